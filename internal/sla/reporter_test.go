package sla

import (
	"math"
	"testing"

	"github.com/pulsedesk/pulsedesk/internal/domain"
)

func metricRecord(overall domain.Compliance, firstResponse *int64) *domain.SLAMetrics {
	set := domain.MetricSet{
		Values: domain.MetricValues{FirstResponse: firstResponse},
		Compliance: domain.ComplianceFlags{
			Pickup:        domain.ComplianceUnknown,
			FirstResponse: domain.ComplianceUnknown,
			AvgResponse:   domain.ComplianceUnknown,
			Resolution:    domain.ComplianceUnknown,
			Overall:       overall,
		},
	}
	if firstResponse != nil {
		set.Compliance.FirstResponse = domain.ComplianceCompliant
	}
	return &domain.SLAMetrics{WallClock: set, BusinessHours: set}
}

func TestPercentile(t *testing.T) {
	values := []int64{10, 20, 30, 40, 50}

	tests := []struct {
		pct  float64
		want float64
	}{
		{50, 30},
		{90, 46}, // index 3.6 interpolates between 40 and 50
		{95, 48},
		{0, 10},
		{100, 50},
	}

	for _, tt := range tests {
		if got := Percentile(values, tt.pct); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%v, %v) = %v, want %v", values, tt.pct, got, tt.want)
		}
	}
}

func TestPercentile_EdgeCases(t *testing.T) {
	if got := Percentile(nil, 95); got != 0 {
		t.Errorf("Expected 0 for empty input, got %v", got)
	}
	if got := Percentile([]int64{42}, 90); got != 42 {
		t.Errorf("Expected single value to be its own percentile, got %v", got)
	}

	// Input order must not matter
	if got := Percentile([]int64{50, 10, 40, 20, 30}, 50); got != 30 {
		t.Errorf("Expected 30 for unsorted input, got %v", got)
	}
}

func TestBuildReport_ComplianceRates(t *testing.T) {
	records := []*domain.SLAMetrics{
		metricRecord(domain.ComplianceCompliant, nil),
		metricRecord(domain.ComplianceCompliant, nil),
		metricRecord(domain.ComplianceBreached, nil),
		// Unknown overall: excluded from numerator and denominator
		metricRecord(domain.ComplianceUnknown, nil),
	}

	report := BuildReport(records)

	if report.TotalRecords != 4 {
		t.Errorf("Expected 4 total records, got %d", report.TotalRecords)
	}

	wall := report.WallClock
	if wall.OverallCompliant != 2 || wall.OverallBreached != 1 || wall.OverallUnknown != 1 {
		t.Errorf("Unexpected overall counts: %+v", wall)
	}

	want := 2.0 / 3.0 * 100
	if math.Abs(wall.OverallComplianceRatePct-want) > 1e-9 {
		t.Errorf("Expected overall rate %.4f, got %.4f", want, wall.OverallComplianceRatePct)
	}
}

func TestBuildReport_PerMetricIndependence(t *testing.T) {
	// One record knows only resolution, the other only pickup. Each metric's
	// rate must be computed over its own known subset.
	recA := &domain.SLAMetrics{
		WallClock: domain.MetricSet{
			Values: domain.MetricValues{Resolution: domain.Seconds(100)},
			Compliance: domain.ComplianceFlags{
				Pickup:        domain.ComplianceUnknown,
				FirstResponse: domain.ComplianceUnknown,
				AvgResponse:   domain.ComplianceUnknown,
				Resolution:    domain.ComplianceCompliant,
				Overall:       domain.ComplianceUnknown,
			},
		},
	}
	recB := &domain.SLAMetrics{
		WallClock: domain.MetricSet{
			Values: domain.MetricValues{Pickup: domain.Seconds(500)},
			Compliance: domain.ComplianceFlags{
				Pickup:        domain.ComplianceBreached,
				FirstResponse: domain.ComplianceUnknown,
				AvgResponse:   domain.ComplianceUnknown,
				Resolution:    domain.ComplianceUnknown,
				Overall:       domain.ComplianceUnknown,
			},
		},
	}

	report := BuildReport([]*domain.SLAMetrics{recA, recB})
	wall := report.WallClock

	if wall.Resolution.Compliant != 1 || wall.Resolution.Breached != 0 {
		t.Errorf("Unexpected resolution counts: %+v", wall.Resolution)
	}
	if wall.Resolution.ComplianceRatePct != 100 {
		t.Errorf("Expected resolution rate 100, got %v", wall.Resolution.ComplianceRatePct)
	}
	if wall.Pickup.Compliant != 0 || wall.Pickup.Breached != 1 {
		t.Errorf("Unexpected pickup counts: %+v", wall.Pickup)
	}
	if wall.Pickup.ComplianceRatePct != 0 {
		t.Errorf("Expected pickup rate 0, got %v", wall.Pickup.ComplianceRatePct)
	}

	if wall.Resolution.AvgSeconds != 100 {
		t.Errorf("Expected resolution average 100, got %v", wall.Resolution.AvgSeconds)
	}
	if wall.Resolution.KnownValues != 1 {
		t.Errorf("Expected 1 known resolution value, got %d", wall.Resolution.KnownValues)
	}
}

func TestBuildReport_FirstResponsePercentiles(t *testing.T) {
	records := []*domain.SLAMetrics{
		metricRecord(domain.ComplianceCompliant, domain.Seconds(10)),
		metricRecord(domain.ComplianceCompliant, domain.Seconds(20)),
		metricRecord(domain.ComplianceCompliant, domain.Seconds(30)),
		metricRecord(domain.ComplianceCompliant, domain.Seconds(40)),
		metricRecord(domain.ComplianceCompliant, domain.Seconds(50)),
		metricRecord(domain.ComplianceCompliant, nil), // unknown excluded
	}

	report := BuildReport(records)
	wall := report.WallClock

	if wall.FirstResponseP50 != 30 {
		t.Errorf("Expected p50 30, got %v", wall.FirstResponseP50)
	}
	if math.Abs(wall.FirstResponseP90-46) > 1e-9 {
		t.Errorf("Expected p90 46, got %v", wall.FirstResponseP90)
	}
	if math.Abs(wall.FirstResponseP95-48) > 1e-9 {
		t.Errorf("Expected p95 48, got %v", wall.FirstResponseP95)
	}
}

func TestBuildReport_SkipsFailedRecords(t *testing.T) {
	failed := metricRecord(domain.ComplianceCompliant, domain.Seconds(10))
	msg := "corrupted lifecycle"
	failed.ComputeError = &msg

	records := []*domain.SLAMetrics{
		failed,
		metricRecord(domain.ComplianceCompliant, domain.Seconds(20)),
	}

	report := BuildReport(records)
	if report.TotalRecords != 2 {
		t.Errorf("Expected 2 total records, got %d", report.TotalRecords)
	}
	if report.WallClock.OverallCompliant != 1 {
		t.Errorf("Expected failed record excluded from counts, got %+v", report.WallClock)
	}
	if report.WallClock.FirstResponse.KnownValues != 1 {
		t.Errorf("Expected 1 known first response, got %d", report.WallClock.FirstResponse.KnownValues)
	}
}

func TestBuildReport_Empty(t *testing.T) {
	report := BuildReport(nil)
	if report.TotalRecords != 0 {
		t.Errorf("Expected 0 total records, got %d", report.TotalRecords)
	}
	if report.WallClock.OverallComplianceRatePct != 0 {
		t.Errorf("Expected 0 rate for empty input, got %v", report.WallClock.OverallComplianceRatePct)
	}
	if report.WallClock.FirstResponseP95 != 0 {
		t.Errorf("Expected 0 percentile for empty input, got %v", report.WallClock.FirstResponseP95)
	}
}
