package chat

import "time"

// Conversation is the two-party thread attached to a single property.
// Participants are fixed for the conversation's lifetime: the property owner
// and the user who first made contact. There is no mutable participant list.
//
// Note: conversations are keyed on property_id alone, not (property_id, user_id).
// A second user contacting the owner about the same property lands in the same
// thread as the first. This mirrors the existing marketplace behavior and is
// kept deliberately; see DESIGN.md before changing it.
type Conversation struct {
	ID            string     `db:"id"`
	PropertyID    string     `db:"property_id"`
	OwnerID       string     `db:"owner_id"`
	UserID        string     `db:"user_id"`
	LastMessageAt *time.Time `db:"last_message_at"`
	IsDeleted     bool       `db:"is_deleted"`
	CreatedAt     time.Time  `db:"created_at"`
}

// HasParticipant derives participancy; there is no stored membership row.
func (c *Conversation) HasParticipant(userID string) bool {
	if c == nil || userID == "" {
		return false
	}
	return userID == c.OwnerID || userID == c.UserID
}

// CounterpartOf returns the other participant's id, or "" if userID is not
// a participant.
func (c *Conversation) CounterpartOf(userID string) string {
	switch {
	case c == nil:
		return ""
	case userID == c.OwnerID:
		return c.UserID
	case userID == c.UserID:
		return c.OwnerID
	default:
		return ""
	}
}
