package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pulsedesk/pulsedesk/internal/domain"
)

// MockMetricsRepository is a mock implementation of MetricsRepository
type MockMetricsRepository struct {
	mock.Mock
}

func (m *MockMetricsRepository) Upsert(ctx context.Context, metrics *domain.SLAMetrics) error {
	args := m.Called(ctx, metrics)
	return args.Error(0)
}

func (m *MockMetricsRepository) FindByConversation(ctx context.Context, conversationID string) (*domain.SLAMetrics, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SLAMetrics), args.Error(1)
}

func (m *MockMetricsRepository) List(ctx context.Context, filter domain.MetricsFilter) ([]*domain.SLAMetrics, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SLAMetrics), args.Error(1)
}

// memoryCache is a map-backed ReportCache for tests
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[key]
	return payload, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	return nil
}

func compliantRecord(openedAt time.Time) *domain.SLAMetrics {
	set := domain.MetricSet{
		Values: domain.MetricValues{Resolution: domain.Seconds(3600)},
		Compliance: domain.ComplianceFlags{
			Pickup:        domain.ComplianceUnknown,
			FirstResponse: domain.ComplianceUnknown,
			AvgResponse:   domain.ComplianceUnknown,
			Resolution:    domain.ComplianceCompliant,
			Overall:       domain.ComplianceCompliant,
		},
	}
	return &domain.SLAMetrics{
		ConversationID: "c-" + openedAt.Format("20060102150405"),
		Channel:        domain.ChannelChat,
		OpenedAt:       openedAt,
		WallClock:      set,
		BusinessHours:  set,
	}
}

func breachedRecord(openedAt time.Time) *domain.SLAMetrics {
	rec := compliantRecord(openedAt)
	rec.WallClock.Compliance.Overall = domain.ComplianceBreached
	rec.BusinessHours.Compliance.Overall = domain.ComplianceBreached
	return rec
}

func TestGetSLAReport(t *testing.T) {
	now := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)

	repo := new(MockMetricsRepository)
	repo.On("List", mock.Anything, mock.Anything).Return([]*domain.SLAMetrics{
		compliantRecord(now),
		compliantRecord(now.Add(time.Hour)),
		breachedRecord(now.Add(2 * time.Hour)),
	}, nil)

	uc := NewReportUseCase(repo, nil, 0, quietLogger())

	response, err := uc.GetSLAReport(context.Background(), domain.MetricsFilter{})
	require.NoError(t, err)

	assert.Equal(t, 3, response.Report.TotalRecords)
	assert.InDelta(t, 66.666, response.Report.WallClock.OverallComplianceRatePct, 0.01)
	assert.False(t, response.GeneratedAt.IsZero())
}

func TestGetSLAReport_ServesFromCache(t *testing.T) {
	now := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)

	repo := new(MockMetricsRepository)
	repo.On("List", mock.Anything, mock.Anything).Return([]*domain.SLAMetrics{compliantRecord(now)}, nil).Once()

	cache := newMemoryCache()
	uc := NewReportUseCase(repo, cache, time.Minute, quietLogger())

	first, err := uc.GetSLAReport(context.Background(), domain.MetricsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// Second call must not hit the repository again
	second, err := uc.GetSLAReport(context.Background(), domain.MetricsFilter{})
	require.NoError(t, err)
	assert.Equal(t, first.Report.TotalRecords, second.Report.TotalRecords)

	repo.AssertNumberOfCalls(t, "List", 1)
}

func TestGetSLAReport_DistinctFiltersDistinctKeys(t *testing.T) {
	now := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)
	agent := "agent-1"

	repo := new(MockMetricsRepository)
	repo.On("List", mock.Anything, mock.Anything).Return([]*domain.SLAMetrics{compliantRecord(now)}, nil)

	cache := newMemoryCache()
	uc := NewReportUseCase(repo, cache, time.Minute, quietLogger())

	_, err := uc.GetSLAReport(context.Background(), domain.MetricsFilter{})
	require.NoError(t, err)
	_, err = uc.GetSLAReport(context.Background(), domain.MetricsFilter{AgentID: &agent})
	require.NoError(t, err)

	assert.Equal(t, 2, cache.sets)
	repo.AssertNumberOfCalls(t, "List", 2)
}

func TestGetSLATrend(t *testing.T) {
	from := time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	filter := domain.MetricsFilter{OpenedFrom: &from, OpenedTo: &to}

	prevFrom := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	repo := new(MockMetricsRepository)
	// Current period: all compliant
	repo.On("List", mock.Anything, filter).Return([]*domain.SLAMetrics{
		compliantRecord(from), compliantRecord(from.Add(24 * time.Hour)),
	}, nil)
	// Previous period: half compliant
	prevFilter := domain.MetricsFilter{OpenedFrom: &prevFrom, OpenedTo: &from}
	repo.On("List", mock.Anything, prevFilter).Return([]*domain.SLAMetrics{
		compliantRecord(prevFrom), breachedRecord(prevFrom.Add(24 * time.Hour)),
	}, nil)

	uc := NewReportUseCase(repo, nil, 0, quietLogger())

	trend, err := uc.GetSLATrend(context.Background(), filter)
	require.NoError(t, err)

	assert.Equal(t, float64(100), trend.Current.Report.WallClock.OverallComplianceRatePct)
	assert.Equal(t, float64(50), trend.Previous.WallClockRatePct)
	assert.Equal(t, prevFrom, trend.Previous.From)
	assert.Equal(t, from, trend.Previous.To)
	assert.Equal(t, 2, trend.Previous.RecordsConsidered)
}

func TestGetSLATrend_RequiresDateRange(t *testing.T) {
	repo := new(MockMetricsRepository)
	uc := NewReportUseCase(repo, nil, 0, quietLogger())

	_, err := uc.GetSLATrend(context.Background(), domain.MetricsFilter{})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	from := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	to := from.Add(-24 * time.Hour)
	_, err = uc.GetSLATrend(context.Background(), domain.MetricsFilter{OpenedFrom: &from, OpenedTo: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}
