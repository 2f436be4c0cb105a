package sla

import (
	"math"
	"sort"

	"github.com/pulsedesk/pulsedesk/internal/domain"
)

// MetricAggregate summarizes one metric across a collection of records.
// Records whose flag or value is unknown are excluded from the relevant
// counts entirely; they never sink a rate or drag an average toward zero.
type MetricAggregate struct {
	Compliant         int     `json:"compliant"`
	Breached          int     `json:"breached"`
	ComplianceRatePct float64 `json:"compliance_rate_pct"`
	AvgSeconds        float64 `json:"avg_seconds"`
	KnownValues       int     `json:"known_values"`
}

// TimeSystemReport is the aggregate view of one time system
type TimeSystemReport struct {
	OverallCompliant         int     `json:"overall_compliant"`
	OverallBreached          int     `json:"overall_breached"`
	OverallUnknown           int     `json:"overall_unknown"`
	OverallComplianceRatePct float64 `json:"overall_compliance_rate_pct"`

	Pickup        MetricAggregate `json:"pickup"`
	FirstResponse MetricAggregate `json:"first_response"`
	AvgResponse   MetricAggregate `json:"avg_response"`
	Resolution    MetricAggregate `json:"resolution"`

	FirstResponseP50 float64 `json:"first_response_p50_seconds"`
	FirstResponseP90 float64 `json:"first_response_p90_seconds"`
	FirstResponseP95 float64 `json:"first_response_p95_seconds"`
}

// Report is the full aggregate summary over a filter-selected collection of
// persisted metric records, computed separately per time system.
type Report struct {
	TotalRecords  int              `json:"total_records"`
	WallClock     TimeSystemReport `json:"wall_clock"`
	BusinessHours TimeSystemReport `json:"business_hours"`
}

// BuildReport computes compliance rates, average durations and
// first-response percentiles over the given records. Filtering (agent,
// channel, date range) is the storage layer's job; the reporter consumes the
// collection as-is.
func BuildReport(records []*domain.SLAMetrics) *Report {
	report := &Report{TotalRecords: len(records)}

	wall := make([]domain.MetricSet, 0, len(records))
	business := make([]domain.MetricSet, 0, len(records))
	for _, rec := range records {
		if rec == nil || rec.Failed() {
			// Failed computations carry no SLA data; they count toward
			// TotalRecords but toward nothing else.
			continue
		}
		wall = append(wall, rec.WallClock)
		business = append(business, rec.BusinessHours)
	}

	report.WallClock = buildTimeSystemReport(wall)
	report.BusinessHours = buildTimeSystemReport(business)
	return report
}

func buildTimeSystemReport(sets []domain.MetricSet) TimeSystemReport {
	var r TimeSystemReport

	for _, s := range sets {
		switch s.Compliance.Overall {
		case domain.ComplianceCompliant:
			r.OverallCompliant++
		case domain.ComplianceBreached:
			r.OverallBreached++
		default:
			r.OverallUnknown++
		}
	}
	r.OverallComplianceRatePct = ratePct(r.OverallCompliant, r.OverallBreached)

	r.Pickup = aggregateMetric(sets, func(s domain.MetricSet) (*int64, domain.Compliance) {
		return s.Values.Pickup, s.Compliance.Pickup
	})
	r.FirstResponse = aggregateMetric(sets, func(s domain.MetricSet) (*int64, domain.Compliance) {
		return s.Values.FirstResponse, s.Compliance.FirstResponse
	})
	r.AvgResponse = aggregateMetric(sets, func(s domain.MetricSet) (*int64, domain.Compliance) {
		return s.Values.AvgResponse, s.Compliance.AvgResponse
	})
	r.Resolution = aggregateMetric(sets, func(s domain.MetricSet) (*int64, domain.Compliance) {
		return s.Values.Resolution, s.Compliance.Resolution
	})

	firstResponses := make([]int64, 0, len(sets))
	for _, s := range sets {
		if s.Values.FirstResponse != nil {
			firstResponses = append(firstResponses, *s.Values.FirstResponse)
		}
	}
	r.FirstResponseP50 = Percentile(firstResponses, 50)
	r.FirstResponseP90 = Percentile(firstResponses, 90)
	r.FirstResponseP95 = Percentile(firstResponses, 95)

	return r
}

// aggregateMetric folds one metric over all sets. Each metric's exclusion is
// independent: a record unknown for pickup may still count toward resolution.
func aggregateMetric(sets []domain.MetricSet, pick func(domain.MetricSet) (*int64, domain.Compliance)) MetricAggregate {
	var agg MetricAggregate
	var sum int64

	for _, s := range sets {
		value, flag := pick(s)
		switch flag {
		case domain.ComplianceCompliant:
			agg.Compliant++
		case domain.ComplianceBreached:
			agg.Breached++
		}
		if value != nil {
			sum += *value
			agg.KnownValues++
		}
	}

	agg.ComplianceRatePct = ratePct(agg.Compliant, agg.Breached)
	if agg.KnownValues > 0 {
		agg.AvgSeconds = float64(sum) / float64(agg.KnownValues)
	}
	return agg
}

// Percentile computes the pct-th percentile of values by linear interpolation
// between order statistics. An empty input yields 0 by convention.
func Percentile(values []int64, pct float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	index := (pct / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return float64(sorted[lower])
	}

	frac := index - float64(lower)
	return float64(sorted[lower])*(1-frac) + float64(sorted[upper])*frac
}

func ratePct(compliant, breached int) float64 {
	total := compliant + breached
	if total == 0 {
		return 0
	}
	return float64(compliant) / float64(total) * 100
}
