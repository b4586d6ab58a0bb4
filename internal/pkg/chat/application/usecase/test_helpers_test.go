package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	chat "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/application/domain"
	repository "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/persistence/repository/port"
)

// mockChatRepo is an in-memory ChatRepository for unit testing use cases.
type mockChatRepo struct {
	conversations map[string]*chat.Conversation
	messages      []chat.Message
	profiles      map[string]chat.Profile
	nextConvID    int
	nextMsgID     int
	failWith      error // when set, every call fails with this error
}

func newMockChatRepo() *mockChatRepo {
	return &mockChatRepo{
		conversations: make(map[string]*chat.Conversation),
		profiles:      make(map[string]chat.Profile),
	}
}

var _ repository.ChatRepository = (*mockChatRepo)(nil)

func (m *mockChatRepo) addConversation(propertyID, ownerID, userID string) *chat.Conversation {
	m.nextConvID++
	c := &chat.Conversation{
		ID:         fmt.Sprintf("conv-%03d", m.nextConvID),
		PropertyID: propertyID,
		OwnerID:    ownerID,
		UserID:     userID,
		CreatedAt:  time.Now().UTC(),
	}
	m.conversations[c.ID] = c
	return c
}

func (m *mockChatRepo) addMessage(conversationID, senderID, body string, at time.Time) chat.Message {
	m.nextMsgID++
	msg := chat.Message{
		ID:             fmt.Sprintf("msg-%03d", m.nextMsgID),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      at,
	}
	m.messages = append(m.messages, msg)
	return msg
}

func (m *mockChatRepo) GetConversation(ctx context.Context, id string) (*chat.Conversation, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	c, ok := m.conversations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockChatRepo) GetConversationByProperty(ctx context.Context, propertyID string) (*chat.Conversation, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, c := range m.conversations {
		if c.PropertyID == propertyID && !c.IsDeleted {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockChatRepo) CreateConversation(ctx context.Context, c chat.Conversation) (string, error) {
	if m.failWith != nil {
		return "", m.failWith
	}
	m.nextConvID++
	c.ID = fmt.Sprintf("conv-%03d", m.nextConvID)
	m.conversations[c.ID] = &c
	return c.ID, nil
}

func (m *mockChatRepo) SaveMessage(ctx context.Context, msg chat.Message) (string, error) {
	if m.failWith != nil {
		return "", m.failWith
	}
	m.nextMsgID++
	msg.ID = fmt.Sprintf("msg-%03d", m.nextMsgID)
	m.messages = append(m.messages, msg)
	if c, ok := m.conversations[msg.ConversationID]; ok {
		at := msg.CreatedAt
		c.LastMessageAt = &at
	}
	return msg.ID, nil
}

func (m *mockChatRepo) GetMessage(ctx context.Context, id string) (*chat.Message, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, msg := range m.messages {
		if msg.ID == id {
			cp := msg
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockChatRepo) MarkMessageRead(ctx context.Context, id string) (*chat.Message, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for i := range m.messages {
		if m.messages[i].ID == id {
			m.messages[i].IsRead = true
			cp := m.messages[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockChatRepo) ListMessagesAfter(ctx context.Context, conversationID string, afterID string, limit int) ([]chat.Message, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var all []chat.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			all = append(all, msg)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	start := 0
	if afterID != "" {
		found := false
		for i, msg := range all {
			if msg.ID == afterID {
				start = i + 1
				found = true
				break
			}
		}
		if !found {
			return nil, repository.ErrNotFound
		}
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (m *mockChatRepo) ListConversationsForUser(ctx context.Context, userID string) ([]chat.ConversationSummary, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []chat.ConversationSummary
	for _, c := range m.conversations {
		if c.IsDeleted || !c.HasParticipant(userID) {
			continue
		}
		s := chat.ConversationSummary{Conversation: *c}
		for i := range m.messages {
			if m.messages[i].ConversationID == c.ID {
				cp := m.messages[i]
				if s.LastMessage == nil || cp.CreatedAt.After(s.LastMessage.CreatedAt) {
					s.LastMessage = &cp
				}
			}
		}
		s.Counterpart = m.profiles[c.CounterpartOf(userID)]
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := out[i].Conversation.LastMessageAt, out[j].Conversation.LastMessageAt
		switch {
		case li == nil:
			return false
		case lj == nil:
			return true
		default:
			return li.After(*lj)
		}
	})
	return out, nil
}

func (m *mockChatRepo) SoftDeleteConversationsByProperty(ctx context.Context, propertyID string) (int64, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	var n int64
	for _, c := range m.conversations {
		if c.PropertyID == propertyID && !c.IsDeleted {
			c.IsDeleted = true
			n++
		}
	}
	return n, nil
}

// mockPropertyRepo is an in-memory PropertyRepository.
type mockPropertyRepo struct {
	properties map[string]*chat.Property
}

func newMockPropertyRepo() *mockPropertyRepo {
	return &mockPropertyRepo{properties: make(map[string]*chat.Property)}
}

var _ repository.PropertyRepository = (*mockPropertyRepo)(nil)

func (m *mockPropertyRepo) addProperty(id, ownerID string) {
	m.properties[id] = &chat.Property{ID: id, OwnerID: ownerID}
}

func (m *mockPropertyRepo) GetProperty(ctx context.Context, id string) (*chat.Property, error) {
	p, ok := m.properties[id]
	if !ok || p.IsDeleted {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}
