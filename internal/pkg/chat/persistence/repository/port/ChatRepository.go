package repository

import (
	"context"
	"errors"

	chat "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/application/domain"
)

// ErrNotFound is returned by adapters when the requested row does not exist.
// Use cases translate it into their own taxonomy; adapters must not leak
// driver-specific sentinels through the port.
var ErrNotFound = errors.New("repository: not found")

// ChatRepository defines persistence operations for the chat domain.
// The store is the sole source of truth for conversation/message state;
// callers hold no authoritative copy.
type ChatRepository interface {
	// GetConversation loads a conversation by id, including soft-deleted rows
	// (the use case decides how to treat the flag).
	GetConversation(ctx context.Context, id string) (*chat.Conversation, error)

	// GetConversationByProperty returns the active conversation for the
	// property, or ErrNotFound. Conversations are unique per property; the
	// schema enforces this with a partial unique index on property_id where
	// is_deleted = false, which is also the race guard for concurrent first
	// creation.
	GetConversationByProperty(ctx context.Context, propertyID string) (*chat.Conversation, error)

	// CreateConversation persists a new conversation and returns its id.
	CreateConversation(ctx context.Context, c chat.Conversation) (string, error)

	// SaveMessage persists the message and bumps the owning conversation's
	// last_message_at in the same transaction. Returns the generated id.
	SaveMessage(ctx context.Context, m chat.Message) (string, error)

	// GetMessage loads a single message by id.
	GetMessage(ctx context.Context, id string) (*chat.Message, error)

	// MarkMessageRead sets is_read = true and returns the updated row.
	// Already-read messages are returned unchanged (idempotent).
	MarkMessageRead(ctx context.Context, id string) (*chat.Message, error)

	// ListMessagesAfter returns up to limit messages of the conversation
	// ordered by created_at ascending, strictly after the message identified
	// by afterID (exclusive cursor). Empty afterID starts from the beginning.
	// An afterID that resolves to no row yields ErrNotFound.
	ListMessagesAfter(ctx context.Context, conversationID string, afterID string, limit int) ([]chat.Message, error)

	// ListConversationsForUser returns non-deleted conversations where the
	// user is a participant, each with its latest message and the counterpart
	// profile, ordered by last_message_at descending.
	ListConversationsForUser(ctx context.Context, userID string) ([]chat.ConversationSummary, error)

	// SoftDeleteConversationsByProperty flags the property's conversations as
	// deleted and returns the number of rows affected. Messages stay in place.
	SoftDeleteConversationsByProperty(ctx context.Context, propertyID string) (int64, error)
}

// PropertyRepository is the read-only lookup into the marketplace property
// table, used to resolve a conversation's owner. Property CRUD is out of
// scope for this service.
type PropertyRepository interface {
	GetProperty(ctx context.Context, id string) (*chat.Property, error)
}
