package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pulsedesk/pulsedesk/internal/domain"
	"github.com/pulsedesk/pulsedesk/internal/ports"
	"github.com/pulsedesk/pulsedesk/internal/sla"
)

// SLAReportResponse is the aggregate report handed to the presentation layer
type SLAReportResponse struct {
	Filter      domain.MetricsFilter `json:"filter"`
	Report      *sla.Report          `json:"report"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// PeriodRate is one period's overall compliance rate per time system
type PeriodRate struct {
	From                 time.Time `json:"from"`
	To                   time.Time `json:"to"`
	WallClockRatePct     float64   `json:"wall_clock_rate_pct"`
	BusinessHoursRatePct float64   `json:"business_hours_rate_pct"`
	RecordsConsidered    int       `json:"records_considered"`
}

// SLATrendResponse pairs the current period's report with the overall
// compliance rate of the equal-length immediately-preceding period. Any
// magnitude-of-change math is left to the presentation layer.
type SLATrendResponse struct {
	Current  *SLAReportResponse `json:"current"`
	Previous PeriodRate         `json:"previous"`
}

// ReportUseCase serves aggregate SLA reports over persisted metric records,
// with an injected TTL cache in front of the fetch-and-aggregate path.
type ReportUseCase struct {
	metrics ports.MetricsRepository
	cache   ports.ReportCache
	ttl     time.Duration
	logger  *logrus.Logger
}

// NewReportUseCase creates a report use case. cache may be a noop
// implementation when caching is disabled.
func NewReportUseCase(metrics ports.MetricsRepository, cache ports.ReportCache, ttl time.Duration, logger *logrus.Logger) *ReportUseCase {
	return &ReportUseCase{
		metrics: metrics,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// GetSLAReport builds (or serves from cache) the aggregate report for the
// filter-selected subset of metric records.
func (uc *ReportUseCase) GetSLAReport(ctx context.Context, filter domain.MetricsFilter) (*SLAReportResponse, error) {
	key := reportCacheKey("report", filter)

	if cached, ok := uc.fromCache(ctx, key); ok {
		return cached, nil
	}

	records, err := uc.metrics.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sla metrics: %w", err)
	}

	response := &SLAReportResponse{
		Filter:      filter,
		Report:      sla.BuildReport(records),
		GeneratedAt: time.Now().UTC(),
	}

	uc.toCache(ctx, key, response)
	return response, nil
}

// GetSLATrend builds the current period's report plus the preceding
// equal-length period's overall compliance rates. The filter must carry a
// bounded date range.
func (uc *ReportUseCase) GetSLATrend(ctx context.Context, filter domain.MetricsFilter) (*SLATrendResponse, error) {
	if filter.OpenedFrom == nil || filter.OpenedTo == nil || !filter.OpenedFrom.Before(*filter.OpenedTo) {
		return nil, domain.ErrInvalidDateRange
	}

	current, err := uc.GetSLAReport(ctx, filter)
	if err != nil {
		return nil, err
	}

	length := filter.OpenedTo.Sub(*filter.OpenedFrom)
	prevTo := *filter.OpenedFrom
	prevFrom := prevTo.Add(-length)

	prevFilter := filter
	prevFilter.OpenedFrom = &prevFrom
	prevFilter.OpenedTo = &prevTo

	prevRecords, err := uc.metrics.List(ctx, prevFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list previous period metrics: %w", err)
	}
	prevReport := sla.BuildReport(prevRecords)

	return &SLATrendResponse{
		Current: current,
		Previous: PeriodRate{
			From:                 prevFrom,
			To:                   prevTo,
			WallClockRatePct:     prevReport.WallClock.OverallComplianceRatePct,
			BusinessHoursRatePct: prevReport.BusinessHours.OverallComplianceRatePct,
			RecordsConsidered:    prevReport.TotalRecords,
		},
	}, nil
}

func (uc *ReportUseCase) fromCache(ctx context.Context, key string) (*SLAReportResponse, bool) {
	if uc.cache == nil {
		return nil, false
	}
	payload, hit, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.WithError(err).Warn("report cache read failed, falling through to storage")
		return nil, false
	}
	if !hit {
		return nil, false
	}

	var response SLAReportResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		uc.logger.WithError(err).Warn("report cache payload corrupt, falling through to storage")
		return nil, false
	}
	return &response, true
}

func (uc *ReportUseCase) toCache(ctx context.Context, key string, response *SLAReportResponse) {
	if uc.cache == nil || uc.ttl <= 0 {
		return
	}
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, key, payload, uc.ttl); err != nil {
		uc.logger.WithError(err).Warn("report cache write failed")
	}
}

// reportCacheKey derives a stable cache key from the filter fields
func reportCacheKey(kind string, filter domain.MetricsFilter) string {
	agent, channel, from, to := "*", "*", "*", "*"
	if filter.AgentID != nil {
		agent = *filter.AgentID
	}
	if filter.Channel != nil {
		channel = string(*filter.Channel)
	}
	if filter.OpenedFrom != nil {
		from = filter.OpenedFrom.UTC().Format(time.RFC3339)
	}
	if filter.OpenedTo != nil {
		to = filter.OpenedTo.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("sla:%s:%s:%s:%s:%s", kind, agent, channel, from, to)
}
