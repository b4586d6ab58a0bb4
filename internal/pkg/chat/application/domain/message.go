package chat

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyMessage rejects a message whose body is empty after trimming.
var ErrEmptyMessage = errors.New("chat: empty message body")

// Message is an immutable log entry in a conversation. The only mutable field
// is IsRead, which transitions false -> true exactly once.
type Message struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	SenderID       string    `db:"sender_id"`
	Body           string    `db:"body"`
	IsRead         bool      `db:"is_read"`
	CreatedAt      time.Time `db:"created_at"`
}

// NewMessage validates and normalizes a message ready to persist.
// The body is trimmed; an empty body after trimming is rejected.
func NewMessage(m Message) (*Message, error) {
	if m.ConversationID == "" || m.SenderID == "" {
		return nil, errors.New("conversation_id and sender_id are required")
	}

	m.Body = strings.TrimSpace(m.Body)
	if m.Body == "" {
		return nil, ErrEmptyMessage
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	m.IsRead = false

	return &m, nil
}
