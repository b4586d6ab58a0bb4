package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	chat "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/application/domain"
	repository "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/persistence/repository/port"
)

// stubStore is a concurrency-safe in-memory store backing controller tests.
// Websocket handlers for different connections run concurrently, so every
// method takes the lock.
type stubStore struct {
	mu            sync.Mutex
	conversations map[string]*chat.Conversation
	messages      []chat.Message
	properties    map[string]*chat.Property
	nextID        int
}

func newStubStore() *stubStore {
	return &stubStore{
		conversations: make(map[string]*chat.Conversation),
		properties:    make(map[string]*chat.Property),
	}
}

var (
	_ repository.ChatRepository     = (*stubStore)(nil)
	_ repository.PropertyRepository = (*stubStore)(nil)
)

func (s *stubStore) addConversation(id, propertyID, ownerID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[id] = &chat.Conversation{
		ID: id, PropertyID: propertyID, OwnerID: ownerID, UserID: userID,
		CreatedAt: time.Now().UTC(),
	}
}

func (s *stubStore) addProperty(id, ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties[id] = &chat.Property{ID: id, OwnerID: ownerID}
}

func (s *stubStore) GetConversation(ctx context.Context, id string) (*chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *stubStore) GetConversationByProperty(ctx context.Context, propertyID string) (*chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conversations {
		if c.PropertyID == propertyID && !c.IsDeleted {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubStore) CreateConversation(ctx context.Context, c chat.Conversation) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = fmt.Sprintf("conv-%03d", s.nextID)
	s.conversations[c.ID] = &c
	return c.ID, nil
}

func (s *stubStore) SaveMessage(ctx context.Context, m chat.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m.ID = fmt.Sprintf("msg-%03d", s.nextID)
	s.messages = append(s.messages, m)
	if c, ok := s.conversations[m.ConversationID]; ok {
		at := m.CreatedAt
		c.LastMessageAt = &at
	}
	return m.ID, nil
}

func (s *stubStore) GetMessage(ctx context.Context, id string) (*chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubStore) MarkMessageRead(ctx context.Context, id string) (*chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].IsRead = true
			cp := s.messages[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubStore) ListMessagesAfter(ctx context.Context, conversationID string, afterID string, limit int) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []chat.Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			all = append(all, m)
		}
	}
	start := 0
	if afterID != "" {
		found := false
		for i, m := range all {
			if m.ID == afterID {
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

func (s *stubStore) ListConversationsForUser(ctx context.Context, userID string) ([]chat.ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []chat.ConversationSummary
	for _, c := range s.conversations {
		if c.IsDeleted || !c.HasParticipant(userID) {
			continue
		}
		out = append(out, chat.ConversationSummary{
			Conversation: *c,
			Counterpart:  chat.Profile{ID: c.CounterpartOf(userID)},
		})
	}
	return out, nil
}

func (s *stubStore) SoftDeleteConversationsByProperty(ctx context.Context, propertyID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, c := range s.conversations {
		if c.PropertyID == propertyID && !c.IsDeleted {
			c.IsDeleted = true
			n++
		}
	}
	return n, nil
}

func (s *stubStore) GetProperty(ctx context.Context, id string) (*chat.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.properties[id]
	if !ok || p.IsDeleted {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}
