package domain

import (
	"time"
)

// Compliance is a three-valued compliance flag. A metric whose required
// timestamps do not exist yet is neither compliant nor breached; it is
// unknown, and unknown must never be coerced to a breach or a zero-duration
// success.
type Compliance string

const (
	ComplianceUnknown   Compliance = "UNKNOWN"
	ComplianceBreached  Compliance = "BREACHED"
	ComplianceCompliant Compliance = "COMPLIANT"
)

// Known reports whether the flag carries a definite verdict
func (c Compliance) Known() bool {
	return c == ComplianceBreached || c == ComplianceCompliant
}

// MetricValues holds the four elapsed-time metrics for one time system, in
// whole seconds. A nil value means "unknown / not yet applicable".
type MetricValues struct {
	Pickup        *int64 `json:"pickup_seconds,omitempty"`
	FirstResponse *int64 `json:"first_response_seconds,omitempty"`
	AvgResponse   *int64 `json:"avg_response_seconds,omitempty"`
	Resolution    *int64 `json:"resolution_seconds,omitempty"`
}

// ComplianceFlags holds the per-metric verdicts plus the folded overall
// verdict for one time system.
type ComplianceFlags struct {
	Pickup        Compliance `json:"pickup"`
	FirstResponse Compliance `json:"first_response"`
	AvgResponse   Compliance `json:"avg_response"`
	Resolution    Compliance `json:"resolution"`
	Overall       Compliance `json:"overall"`
}

// MetricSet is the complete computed result for one time system
type MetricSet struct {
	Values     MetricValues    `json:"values"`
	Compliance ComplianceFlags `json:"compliance"`
}

// SLAMetrics is the per-conversation output of the metric engine: the same
// four metrics computed twice, once in wall-clock time and once in
// business-hours time, each with its own independent compliance verdicts.
// Records are created fresh on every computation and upserted by
// conversation ID; recomputation over identical inputs is idempotent.
type SLAMetrics struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	AgentID        *string   `json:"agent_id,omitempty"`
	Channel        Channel   `json:"channel"`
	OpenedAt       time.Time `json:"opened_at"`
	WallClock      MetricSet `json:"wall_clock"`
	BusinessHours  MetricSet `json:"business_hours"`
	ComputeError   *string   `json:"compute_error,omitempty"` // set when the lifecycle could not be processed
	ComputedAt     time.Time `json:"computed_at"`
}

// Failed reports whether this record was persisted without SLA data because
// the conversation's metric computation failed.
func (m *SLAMetrics) Failed() bool {
	return m.ComputeError != nil
}

// MetricsFilter represents filters for fetching persisted metric records.
// Filtering happens in the persistence layer before the reporter sees the
// collection.
type MetricsFilter struct {
	AgentID    *string    `json:"agent_id,omitempty"`
	Channel    *Channel   `json:"channel,omitempty"`
	OpenedFrom *time.Time `json:"opened_from,omitempty"`
	OpenedTo   *time.Time `json:"opened_to,omitempty"`
}

// Metric errors
var (
	ErrMetricsNotFound  = NewDomainError("sla metrics not found")
	ErrInvalidDateRange = NewDomainError("invalid date range")
)

// Seconds is a convenience constructor for nullable duration values
func Seconds(v int64) *int64 {
	return &v
}

// UnknownMetricSet returns a set with no values and every flag explicitly
// unknown. Used for records persisted after a failed computation.
func UnknownMetricSet() MetricSet {
	return MetricSet{
		Compliance: ComplianceFlags{
			Pickup:        ComplianceUnknown,
			FirstResponse: ComplianceUnknown,
			AvgResponse:   ComplianceUnknown,
			Resolution:    ComplianceUnknown,
			Overall:       ComplianceUnknown,
		},
	}
}
