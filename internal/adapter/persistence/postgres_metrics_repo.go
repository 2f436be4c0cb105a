package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pulsedesk/pulsedesk/internal/domain"
	"github.com/pulsedesk/pulsedesk/internal/ports"
)

// PostgresMetricsRepository implements MetricsRepository using PostgreSQL.
// The two metric sets are stored as JSONB documents; the record is keyed by
// conversation ID so recomputation overwrites in place.
type PostgresMetricsRepository struct {
	db *sql.DB
}

// NewPostgresMetricsRepository creates a new PostgreSQL metrics repository
func NewPostgresMetricsRepository(db *sql.DB) ports.MetricsRepository {
	return &PostgresMetricsRepository{db: db}
}

// Upsert creates or overwrites the metric record for a conversation. The
// write is a single statement, so readers never observe a partial record.
func (r *PostgresMetricsRepository) Upsert(ctx context.Context, metrics *domain.SLAMetrics) error {
	wallClock, err := json.Marshal(metrics.WallClock)
	if err != nil {
		return fmt.Errorf("failed to marshal wall-clock metrics: %w", err)
	}
	businessHours, err := json.Marshal(metrics.BusinessHours)
	if err != nil {
		return fmt.Errorf("failed to marshal business-hours metrics: %w", err)
	}

	query := `
		INSERT INTO sla_metrics (id, conversation_id, agent_id, channel, opened_at, wall_clock, business_hours, compute_error, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (conversation_id) DO UPDATE SET
			agent_id = EXCLUDED.agent_id,
			channel = EXCLUDED.channel,
			opened_at = EXCLUDED.opened_at,
			wall_clock = EXCLUDED.wall_clock,
			business_hours = EXCLUDED.business_hours,
			compute_error = EXCLUDED.compute_error,
			computed_at = EXCLUDED.computed_at
	`

	var agentID interface{}
	if metrics.AgentID != nil {
		agentID = *metrics.AgentID
	}
	var computeError interface{}
	if metrics.ComputeError != nil {
		computeError = *metrics.ComputeError
	}

	_, err = r.db.ExecContext(ctx, query,
		metrics.ID,
		metrics.ConversationID,
		agentID,
		string(metrics.Channel),
		metrics.OpenedAt,
		wallClock,
		businessHours,
		computeError,
		metrics.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert sla metrics: %w", err)
	}

	return nil
}

// FindByConversation retrieves the metric record for one conversation
func (r *PostgresMetricsRepository) FindByConversation(ctx context.Context, conversationID string) (*domain.SLAMetrics, error) {
	query := `
		SELECT id, conversation_id, agent_id, channel, opened_at, wall_clock, business_hours, compute_error, computed_at
		FROM sla_metrics
		WHERE conversation_id = $1
	`

	record, err := scanMetrics(r.db.QueryRowContext(ctx, query, conversationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrMetricsNotFound
		}
		return nil, fmt.Errorf("failed to find sla metrics: %w", err)
	}
	return record, nil
}

// List retrieves metric records matching the filter
func (r *PostgresMetricsRepository) List(ctx context.Context, filter domain.MetricsFilter) ([]*domain.SLAMetrics, error) {
	query := `
		SELECT id, conversation_id, agent_id, channel, opened_at, wall_clock, business_hours, compute_error, computed_at
		FROM sla_metrics
	`

	var where []string
	var args []interface{}
	if filter.AgentID != nil {
		args = append(args, *filter.AgentID)
		where = append(where, fmt.Sprintf("agent_id = $%d", len(args)))
	}
	if filter.Channel != nil {
		args = append(args, string(*filter.Channel))
		where = append(where, fmt.Sprintf("channel = $%d", len(args)))
	}
	if filter.OpenedFrom != nil {
		args = append(args, *filter.OpenedFrom)
		where = append(where, fmt.Sprintf("opened_at >= $%d", len(args)))
	}
	if filter.OpenedTo != nil {
		args = append(args, *filter.OpenedTo)
		where = append(where, fmt.Sprintf("opened_at < $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY opened_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sla metrics: %w", err)
	}
	defer rows.Close()

	var records []*domain.SLAMetrics
	for rows.Next() {
		record, err := scanMetrics(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sla metrics: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sla metrics: %w", err)
	}

	return records, nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMetrics(row rowScanner) (*domain.SLAMetrics, error) {
	var record domain.SLAMetrics
	var agentID sql.NullString
	var computeError sql.NullString
	var wallClock, businessHours []byte

	err := row.Scan(
		&record.ID,
		&record.ConversationID,
		&agentID,
		&record.Channel,
		&record.OpenedAt,
		&wallClock,
		&businessHours,
		&computeError,
		&record.ComputedAt,
	)
	if err != nil {
		return nil, err
	}

	if agentID.Valid {
		record.AgentID = &agentID.String
	}
	if computeError.Valid {
		record.ComputeError = &computeError.String
	}
	if err := json.Unmarshal(wallClock, &record.WallClock); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wall-clock metrics: %w", err)
	}
	if err := json.Unmarshal(businessHours, &record.BusinessHours); err != nil {
		return nil, fmt.Errorf("failed to unmarshal business-hours metrics: %w", err)
	}

	return &record, nil
}
