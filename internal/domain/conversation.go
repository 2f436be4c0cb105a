package domain

import (
	"time"
)

// MessageRole identifies who authored a message within a conversation
type MessageRole string

const (
	RoleCustomer MessageRole = "CUSTOMER"
	RoleAgent    MessageRole = "AGENT"
	RoleSystem   MessageRole = "SYSTEM"
)

// Message represents a single timestamped message in a conversation
type Message struct {
	Role MessageRole `json:"role"`
	At   time.Time   `json:"at"`
}

// Channel identifies the provider channel a conversation arrived on
type Channel string

const (
	ChannelChat     Channel = "CHAT"
	ChannelEmail    Channel = "EMAIL"
	ChannelMessenger Channel = "MESSENGER"
	ChannelOther    Channel = "OTHER"
)

// Conversation is a read-only lifecycle snapshot of one customer conversation,
// as supplied by the ingestion pipeline. The metric engine never mutates it.
type Conversation struct {
	ID                   string     `json:"id"`
	AgentID              *string    `json:"agent_id,omitempty"`
	Channel              Channel    `json:"channel"`
	OpenedAt             time.Time  `json:"opened_at"`
	FirstAgentAssignedAt *time.Time `json:"first_agent_assigned_at,omitempty"` // nil means never picked up
	ClosedAt             *time.Time `json:"closed_at,omitempty"`               // nil means still open
	Messages             []Message  `json:"messages"`                          // ordered by At ascending
}

// IsAssigned reports whether an agent ever picked up the conversation
func (c *Conversation) IsAssigned() bool {
	return c.FirstAgentAssignedAt != nil
}

// IsClosed reports whether the conversation has been closed
func (c *Conversation) IsClosed() bool {
	return c.ClosedAt != nil
}

// FirstAgentMessage returns the first agent-authored message, or nil if the
// agent never replied
func (c *Conversation) FirstAgentMessage() *Message {
	for i := range c.Messages {
		if c.Messages[i].Role == RoleAgent {
			return &c.Messages[i]
		}
	}
	return nil
}

// ConversationFilter represents filters for fetching conversations
type ConversationFilter struct {
	AgentID  *string    `json:"agent_id,omitempty"`
	Channel  *Channel   `json:"channel,omitempty"`
	OpenedFrom *time.Time `json:"opened_from,omitempty"`
	OpenedTo   *time.Time `json:"opened_to,omitempty"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// Conversation errors
var (
	ErrConversationNotFound = NewDomainError("conversation not found")
	ErrMissingOpenedAt      = NewDomainError("conversation has no opened_at timestamp")
)

// DomainError represents a domain-specific error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}
