package ports

import (
	"context"

	"github.com/pulsedesk/pulsedesk/internal/domain"
)

// ConversationRepository defines the read-only contract toward the ingestion
// pipeline's conversation store. The engine only ever reads lifecycles.
type ConversationRepository interface {
	// FindByID retrieves one conversation with its ordered message stream
	FindByID(ctx context.Context, id string) (*domain.Conversation, error)

	// List retrieves conversations matching the filter, messages included
	List(ctx context.Context, filter domain.ConversationFilter) ([]*domain.Conversation, error)

	// Count returns the number of conversations matching the filter
	Count(ctx context.Context, filter domain.ConversationFilter) (int, error)
}

// MetricsRepository defines the persistence contract for computed SLA
// metrics. Upsert is keyed by conversation ID so recomputation overwrites the
// prior record; a batch never leaves partial-metric records visible.
type MetricsRepository interface {
	// Upsert creates or overwrites the metric record for a conversation
	Upsert(ctx context.Context, metrics *domain.SLAMetrics) error

	// FindByConversation retrieves the metric record for one conversation
	FindByConversation(ctx context.Context, conversationID string) (*domain.SLAMetrics, error)

	// List retrieves metric records matching the filter, for the reporter
	List(ctx context.Context, filter domain.MetricsFilter) ([]*domain.SLAMetrics, error)
}
