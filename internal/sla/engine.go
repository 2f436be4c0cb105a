package sla

import (
	"github.com/pulsedesk/pulsedesk/internal/domain"
)

// Engine computes the full SLAMetrics record for one conversation: the four
// metrics in both time systems plus compliance verdicts. It is built once per
// configuration snapshot and is safe for concurrent use across any number of
// conversations.
type Engine struct {
	calendar  *Calendar
	targets   domain.SLATargets
	enabled   domain.EnabledMetrics
	wallClock *Calculator
	business  *Calculator
}

// NewEngine builds an engine from a validated configuration snapshot.
// Configuration errors fail fast here, before any batch runs.
func NewEngine(officeHours domain.OfficeHoursConfig, targets domain.SLATargets, enabled domain.EnabledMetrics) (*Engine, error) {
	cal, err := NewCalendar(officeHours)
	if err != nil {
		return nil, err
	}
	return &Engine{
		calendar:  cal,
		targets:   targets,
		enabled:   enabled,
		wallClock: NewCalculator(WallClockSeconds),
		business:  NewCalculator(cal.BusinessSecondsBetween),
	}, nil
}

// Calendar exposes the engine's office-hours calendar
func (e *Engine) Calendar() *Calendar {
	return e.calendar
}

// Compute produces the SLAMetrics for one conversation. The result is
// deterministic: identical lifecycle and configuration always yield an
// identical record. Identity fields (ID, ComputedAt) are left for the caller
// to stamp at persistence time.
func (e *Engine) Compute(conv *domain.Conversation) (*domain.SLAMetrics, error) {
	if conv == nil {
		return nil, domain.ErrConversationNotFound
	}
	if conv.OpenedAt.IsZero() {
		return nil, domain.ErrMissingOpenedAt
	}

	return &domain.SLAMetrics{
		ConversationID: conv.ID,
		AgentID:        conv.AgentID,
		Channel:        conv.Channel,
		OpenedAt:       conv.OpenedAt,
		WallClock:      e.metricSet(e.wallClock.Values(conv)),
		BusinessHours:  e.metricSet(e.business.Values(conv)),
	}, nil
}

// metricSet attaches compliance verdicts to one time system's values. The
// wall-clock and business-hours sets are folded independently and never
// influence each other's overall verdict.
func (e *Engine) metricSet(values domain.MetricValues) domain.MetricSet {
	flags := domain.ComplianceFlags{
		Pickup:        CheckCompliance(values.Pickup, e.targets.PickupSeconds),
		FirstResponse: CheckCompliance(values.FirstResponse, e.targets.FirstResponseSeconds),
		AvgResponse:   CheckCompliance(values.AvgResponse, e.targets.AvgResponseSeconds),
		Resolution:    CheckCompliance(values.Resolution, e.targets.ResolutionSeconds),
	}
	flags.Overall = OverallCompliance(flags, e.enabled)
	return domain.MetricSet{Values: values, Compliance: flags}
}
