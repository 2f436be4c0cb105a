package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pulsedesk/pulsedesk/internal/domain"
	"github.com/pulsedesk/pulsedesk/internal/ports"
	"github.com/pulsedesk/pulsedesk/internal/sla"
)

const defaultComputeWorkers = 8

// ComputeSummary reports the outcome of one recompute batch
type ComputeSummary struct {
	Total    int           `json:"total"`
	Computed int           `json:"computed"`
	Failed   int           `json:"failed"`
	Elapsed  time.Duration `json:"elapsed"`
}

// ComputeUseCase runs the metric engine over batches of conversations and
// persists the results. Conversations are independent, so the batch fans out
// over a bounded worker pool; one conversation's failure is recorded and
// never aborts the rest of the batch.
type ComputeUseCase struct {
	conversations ports.ConversationRepository
	metrics       ports.MetricsRepository
	cache         ports.ReportCache
	engine        *sla.Engine
	logger        *logrus.Logger
	workers       int
}

// NewComputeUseCase creates a compute use case. workers <= 0 selects the
// default pool size.
func NewComputeUseCase(
	conversations ports.ConversationRepository,
	metrics ports.MetricsRepository,
	cache ports.ReportCache,
	engine *sla.Engine,
	logger *logrus.Logger,
	workers int,
) *ComputeUseCase {
	if workers <= 0 {
		workers = defaultComputeWorkers
	}
	return &ComputeUseCase{
		conversations: conversations,
		metrics:       metrics,
		cache:         cache,
		engine:        engine,
		logger:        logger,
		workers:       workers,
	}
}

// Recompute fetches every conversation matching the filter and computes and
// upserts its SLA metrics. The configuration snapshot inside the engine is
// fixed for the whole batch.
func (uc *ComputeUseCase) Recompute(ctx context.Context, filter domain.ConversationFilter) (*ComputeSummary, error) {
	started := time.Now()

	convs, err := uc.conversations.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	jobs := make(chan *domain.Conversation)
	var wg sync.WaitGroup
	var mu sync.Mutex
	summary := &ComputeSummary{Total: len(convs)}

	for i := 0; i < uc.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for conv := range jobs {
				if err := uc.computeOne(ctx, conv); err != nil {
					uc.logger.WithFields(logrus.Fields{
						"conversation_id": conv.ID,
					}).WithError(err).Warn("metric computation failed, persisted without SLA fields")

					uc.persistFailure(ctx, conv, err)
					mu.Lock()
					summary.Failed++
					mu.Unlock()
					continue
				}
				mu.Lock()
				summary.Computed++
				mu.Unlock()
			}
		}()
	}

	for _, conv := range convs {
		jobs <- conv
	}
	close(jobs)
	wg.Wait()

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			uc.logger.WithError(err).Warn("failed to invalidate report cache after recompute")
		}
	}

	summary.Elapsed = time.Since(started)
	uc.logger.WithFields(logrus.Fields{
		"total":    summary.Total,
		"computed": summary.Computed,
		"failed":   summary.Failed,
		"elapsed":  summary.Elapsed.String(),
	}).Info("recompute batch finished")

	return summary, nil
}

// RecomputeOne computes and persists metrics for a single conversation
func (uc *ComputeUseCase) RecomputeOne(ctx context.Context, conversationID string) (*domain.SLAMetrics, error) {
	conv, err := uc.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}

	record, err := uc.engine.Compute(conv)
	if err != nil {
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}

	stampRecord(record)
	if err := uc.metrics.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist metrics: %w", err)
	}
	return record, nil
}

// computeOne runs the engine for one conversation and upserts the result.
// A recover fence turns a panic on corrupted lifecycle data into an ordinary
// error so the batch keeps going.
func (uc *ComputeUseCase) computeOne(ctx context.Context, conv *domain.Conversation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("metric computation panicked: %v", r)
		}
	}()

	record, err := uc.engine.Compute(conv)
	if err != nil {
		return err
	}

	stampRecord(record)
	if err := uc.metrics.Upsert(ctx, record); err != nil {
		return fmt.Errorf("failed to persist metrics: %w", err)
	}
	return nil
}

// persistFailure stores a record without SLA fields so the conversation
// surfaces as "SLA data unavailable" instead of a breach.
func (uc *ComputeUseCase) persistFailure(ctx context.Context, conv *domain.Conversation, cause error) {
	msg := cause.Error()
	record := &domain.SLAMetrics{
		ConversationID: conv.ID,
		AgentID:        conv.AgentID,
		Channel:        conv.Channel,
		OpenedAt:       conv.OpenedAt,
		WallClock:      domain.UnknownMetricSet(),
		BusinessHours:  domain.UnknownMetricSet(),
		ComputeError:   &msg,
	}
	stampRecord(record)

	if err := uc.metrics.Upsert(ctx, record); err != nil {
		uc.logger.WithFields(logrus.Fields{
			"conversation_id": conv.ID,
		}).WithError(err).Error("failed to persist failure record")
	}
}

func stampRecord(record *domain.SLAMetrics) {
	record.ID = uuid.NewString()
	record.ComputedAt = time.Now().UTC()
}
