package sla

import (
	"testing"
	"time"

	"github.com/pulsedesk/pulsedesk/internal/domain"
)

func ts(minutesFromBase int, secondsExtra int) time.Time {
	base := time.Date(2024, 7, 2, 10, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(minutesFromBase)*time.Minute + time.Duration(secondsExtra)*time.Second)
}

func TestPickupSeconds(t *testing.T) {
	calc := NewCalculator(WallClockSeconds)

	opened := ts(0, 0)
	assigned := ts(2, 0)
	conv := &domain.Conversation{OpenedAt: opened, FirstAgentAssignedAt: &assigned}

	got := calc.PickupSeconds(conv)
	if got == nil || *got != 120 {
		t.Errorf("Expected 120 seconds, got %v", got)
	}
}

func TestPickupSeconds_NeverPickedUp(t *testing.T) {
	calc := NewCalculator(WallClockSeconds)
	conv := &domain.Conversation{OpenedAt: ts(0, 0)}

	if got := calc.PickupSeconds(conv); got != nil {
		t.Errorf("Expected unknown pickup, got %v", *got)
	}
}

func TestFirstResponseSeconds(t *testing.T) {
	calc := NewCalculator(WallClockSeconds)
	conv := &domain.Conversation{
		OpenedAt: ts(0, 0),
		Messages: []domain.Message{
			{Role: domain.RoleCustomer, At: ts(0, 0)},
			{Role: domain.RoleSystem, At: ts(1, 0)},
			{Role: domain.RoleAgent, At: ts(5, 0)},
			{Role: domain.RoleAgent, At: ts(6, 0)},
		},
	}

	got := calc.FirstResponseSeconds(conv)
	if got == nil || *got != 300 {
		t.Errorf("Expected 300 seconds, got %v", got)
	}
}

func TestFirstResponseSeconds_NoAgentMessage(t *testing.T) {
	calc := NewCalculator(WallClockSeconds)
	conv := &domain.Conversation{
		OpenedAt: ts(0, 0),
		Messages: []domain.Message{
			{Role: domain.RoleCustomer, At: ts(0, 0)},
			{Role: domain.RoleSystem, At: ts(1, 0)},
		},
	}

	if got := calc.FirstResponseSeconds(conv); got != nil {
		t.Errorf("Expected unknown first response, got %v", *got)
	}
}

func TestAvgResponseSeconds(t *testing.T) {
	calc := NewCalculator(WallClockSeconds)

	// customer@T0, agent@T0+30s, customer@T0+60s, agent@T0+150s
	// samples are 30s and 90s; mean is 60s
	conv := &domain.Conversation{
		OpenedAt: ts(0, 0),
		Messages: []domain.Message{
			{Role: domain.RoleCustomer, At: ts(0, 0)},
			{Role: domain.RoleAgent, At: ts(0, 30)},
			{Role: domain.RoleCustomer, At: ts(1, 0)},
			{Role: domain.RoleAgent, At: ts(1, 90)},
		},
	}

	got := calc.AvgResponseSeconds(conv)
	if got == nil || *got != 60 {
		t.Errorf("Expected 60 seconds, got %v", got)
	}
}

func TestAvgResponseSeconds_ConsecutiveCustomerMessages(t *testing.T) {
	calc := NewCalculator(WallClockSeconds)

	// Two customer messages before the reply: only the most recent one pairs,
	// so the single sample is 10s, not 70s.
	conv := &domain.Conversation{
		OpenedAt: ts(0, 0),
		Messages: []domain.Message{
			{Role: domain.RoleCustomer, At: ts(0, 0)},
			{Role: domain.RoleCustomer, At: ts(1, 0)},
			{Role: domain.RoleAgent, At: ts(1, 10)},
		},
	}

	got := calc.AvgResponseSeconds(conv)
	if got == nil || *got != 10 {
		t.Errorf("Expected 10 seconds, got %v", got)
	}
}

func TestAvgResponseSeconds_ConsecutiveAgentMessages(t *testing.T) {
	calc := NewCalculator(WallClockSeconds)

	// The second agent message has no unconsumed customer message to pair
	// with; it must not reuse the stale one.
	conv := &domain.Conversation{
		OpenedAt: ts(0, 0),
		Messages: []domain.Message{
			{Role: domain.RoleCustomer, At: ts(0, 0)},
			{Role: domain.RoleAgent, At: ts(0, 20)},
			{Role: domain.RoleAgent, At: ts(0, 40)},
		},
	}

	got := calc.AvgResponseSeconds(conv)
	if got == nil || *got != 20 {
		t.Errorf("Expected single 20 second sample, got %v", got)
	}
}

func TestAvgResponseSeconds_NoPairs(t *testing.T) {
	calc := NewCalculator(WallClockSeconds)

	tests := []struct {
		name     string
		messages []domain.Message
	}{
		{"empty message list", nil},
		{"agent only", []domain.Message{{Role: domain.RoleAgent, At: ts(0, 0)}}},
		{"customer only", []domain.Message{{Role: domain.RoleCustomer, At: ts(0, 0)}}},
		{"system only", []domain.Message{{Role: domain.RoleSystem, At: ts(0, 0)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := &domain.Conversation{OpenedAt: ts(0, 0), Messages: tt.messages}
			if got := calc.AvgResponseSeconds(conv); got != nil {
				t.Errorf("Expected unknown average response, got %v", *got)
			}
		})
	}
}

func TestResolutionSeconds(t *testing.T) {
	calc := NewCalculator(WallClockSeconds)

	closed := ts(240, 0)
	conv := &domain.Conversation{OpenedAt: ts(0, 0), ClosedAt: &closed}

	got := calc.ResolutionSeconds(conv)
	if got == nil || *got != 14400 {
		t.Errorf("Expected 14400 seconds, got %v", got)
	}

	open := &domain.Conversation{OpenedAt: ts(0, 0)}
	if got := calc.ResolutionSeconds(open); got != nil {
		t.Errorf("Expected unknown resolution for open conversation, got %v", *got)
	}
}

func TestCalculator_BusinessHoursStrategy(t *testing.T) {
	cal := mustCalendar(t, nineToFiveNewYork())
	loc := cal.Location()
	calc := NewCalculator(cal.BusinessSecondsBetween)

	// Opened Friday 16:00 local, closed Monday 10:00 local
	opened := time.Date(2024, 7, 5, 16, 0, 0, 0, loc)
	closed := time.Date(2024, 7, 8, 10, 0, 0, 0, loc)
	conv := &domain.Conversation{OpenedAt: opened, ClosedAt: &closed}

	got := calc.ResolutionSeconds(conv)
	if got == nil || *got != 7200 {
		t.Errorf("Expected 7200 business seconds, got %v", got)
	}
}
