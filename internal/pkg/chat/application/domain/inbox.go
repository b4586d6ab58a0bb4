package chat

// Profile carries the minimal public fields of a counterpart participant
// shown in the inbox.
type Profile struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	AvatarURL string `db:"avatar_url"`
}

// ConversationSummary is one inbox row: the conversation, its most recent
// message (nil when the thread has no messages yet) and the other
// participant's profile.
type ConversationSummary struct {
	Conversation Conversation
	LastMessage  *Message
	Counterpart  Profile
}
