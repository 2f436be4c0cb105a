package sla

import (
	"time"

	"github.com/pulsedesk/pulsedesk/internal/domain"
)

// DurationFunc measures the elapsed seconds between two instants. The two
// strategies are plain wall-clock subtraction and business-hours
// accumulation; everything else about the four metrics is shared, so the
// calculator is written once and parameterized by the strategy.
type DurationFunc func(from, to time.Time) int64

// WallClockSeconds is the calendar-agnostic strategy: straight instant
// subtraction at one-second resolution.
func WallClockSeconds(from, to time.Time) int64 {
	return int64(to.Sub(from) / time.Second)
}

// Calculator computes the four per-conversation metrics under one duration
// strategy. It is stateless and safe for concurrent use.
type Calculator struct {
	measure DurationFunc
}

// NewCalculator creates a calculator with the given duration strategy
func NewCalculator(measure DurationFunc) *Calculator {
	return &Calculator{measure: measure}
}

// PickupSeconds is the time from open to first agent assignment, or unknown
// if the conversation was never picked up.
func (c *Calculator) PickupSeconds(conv *domain.Conversation) *int64 {
	if conv.FirstAgentAssignedAt == nil {
		return nil
	}
	return domain.Seconds(c.measure(conv.OpenedAt, *conv.FirstAgentAssignedAt))
}

// FirstResponseSeconds is the time from open to the first agent-authored
// message, or unknown if the agent never replied.
func (c *Calculator) FirstResponseSeconds(conv *domain.Conversation) *int64 {
	first := conv.FirstAgentMessage()
	if first == nil {
		return nil
	}
	return domain.Seconds(c.measure(conv.OpenedAt, first.At))
}

// AvgResponseSeconds is the mean duration of customer→agent response pairs,
// or unknown if no pair exists. Each agent message consumes the most recent
// unconsumed customer message: consecutive customer messages before a reply
// collapse to the latest one, and consecutive agent replies after a consumed
// customer message contribute no extra samples.
func (c *Calculator) AvgResponseSeconds(conv *domain.Conversation) *int64 {
	var pending *domain.Message
	var sum int64
	var count int64

	for i := range conv.Messages {
		msg := &conv.Messages[i]
		switch msg.Role {
		case domain.RoleCustomer:
			pending = msg
		case domain.RoleAgent:
			if pending != nil {
				sum += c.measure(pending.At, msg.At)
				count++
				pending = nil
			}
		}
	}

	if count == 0 {
		return nil
	}
	return domain.Seconds(sum / count)
}

// ResolutionSeconds is the time from open to close, or unknown while the
// conversation is still open.
func (c *Calculator) ResolutionSeconds(conv *domain.Conversation) *int64 {
	if conv.ClosedAt == nil {
		return nil
	}
	return domain.Seconds(c.measure(conv.OpenedAt, *conv.ClosedAt))
}

// Values computes all four metrics for a conversation
func (c *Calculator) Values(conv *domain.Conversation) domain.MetricValues {
	return domain.MetricValues{
		Pickup:        c.PickupSeconds(conv),
		FirstResponse: c.FirstResponseSeconds(conv),
		AvgResponse:   c.AvgResponseSeconds(conv),
		Resolution:    c.ResolutionSeconds(conv),
	}
}
