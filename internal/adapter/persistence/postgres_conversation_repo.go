package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/pulsedesk/pulsedesk/internal/domain"
	"github.com/pulsedesk/pulsedesk/internal/ports"
)

// PostgresConversationRepository implements ConversationRepository using
// PostgreSQL. Conversations and their message streams are written by the
// ingestion pipeline; this repository only reads them.
type PostgresConversationRepository struct {
	db *sql.DB
}

// NewPostgresConversationRepository creates a new PostgreSQL conversation repository
func NewPostgresConversationRepository(db *sql.DB) ports.ConversationRepository {
	return &PostgresConversationRepository{db: db}
}

// FindByID retrieves a conversation and its ordered message stream
func (r *PostgresConversationRepository) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	query := `
		SELECT id, agent_id, channel, opened_at, first_agent_assigned_at, closed_at
		FROM conversations
		WHERE id = $1
	`

	var conv domain.Conversation
	var agentID sql.NullString
	var assignedAt, closedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&conv.ID,
		&agentID,
		&conv.Channel,
		&conv.OpenedAt,
		&assignedAt,
		&closedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}

	if agentID.Valid {
		conv.AgentID = &agentID.String
	}
	if assignedAt.Valid {
		t := assignedAt.Time
		conv.FirstAgentAssignedAt = &t
	}
	if closedAt.Valid {
		t := closedAt.Time
		conv.ClosedAt = &t
	}

	messages, err := r.loadMessages(ctx, []string{conv.ID})
	if err != nil {
		return nil, err
	}
	conv.Messages = messages[conv.ID]

	return &conv, nil
}

// List retrieves conversations matching the filter, messages included
func (r *PostgresConversationRepository) List(ctx context.Context, filter domain.ConversationFilter) ([]*domain.Conversation, error) {
	query := `
		SELECT id, agent_id, channel, opened_at, first_agent_assigned_at, closed_at
		FROM conversations
	`
	where, args := conversationConditions(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY opened_at ASC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*domain.Conversation
	var ids []string

	for rows.Next() {
		var conv domain.Conversation
		var agentID sql.NullString
		var assignedAt, closedAt sql.NullTime

		if err := rows.Scan(&conv.ID, &agentID, &conv.Channel, &conv.OpenedAt, &assignedAt, &closedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		if agentID.Valid {
			conv.AgentID = &agentID.String
		}
		if assignedAt.Valid {
			t := assignedAt.Time
			conv.FirstAgentAssignedAt = &t
		}
		if closedAt.Valid {
			t := closedAt.Time
			conv.ClosedAt = &t
		}

		conversations = append(conversations, &conv)
		ids = append(ids, conv.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}

	if len(ids) == 0 {
		return conversations, nil
	}

	messages, err := r.loadMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, conv := range conversations {
		conv.Messages = messages[conv.ID]
	}

	return conversations, nil
}

// Count returns the number of conversations matching the filter
func (r *PostgresConversationRepository) Count(ctx context.Context, filter domain.ConversationFilter) (int, error) {
	query := `SELECT COUNT(*) FROM conversations`
	where, args := conversationConditions(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return count, nil
}

// loadMessages fetches the ordered message streams for a set of conversations
func (r *PostgresConversationRepository) loadMessages(ctx context.Context, conversationIDs []string) (map[string][]domain.Message, error) {
	query := `
		SELECT conversation_id, role, sent_at
		FROM conversation_messages
		WHERE conversation_id = ANY($1)
		ORDER BY conversation_id, sent_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(conversationIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	messages := make(map[string][]domain.Message, len(conversationIDs))
	for rows.Next() {
		var conversationID string
		var msg domain.Message
		if err := rows.Scan(&conversationID, &msg.Role, &msg.At); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages[conversationID] = append(messages[conversationID], msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

func conversationConditions(filter domain.ConversationFilter) ([]string, []interface{}) {
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

	return where, args
}
