package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/application/domain"
	repository "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/persistence/repository/port"
)

// SendMessageInput carries the data needed to send a new message.
type SendMessageInput struct {
	ConversationID string
	SenderID       string
	Body           string
}

// SendMessageUseCase appends a message to a conversation the sender
// participates in. Persistence bumps the conversation's last_message_at in
// the same transaction, so nothing is written on failure.
type SendMessageUseCase struct {
	Repo        repository.ChatRepository
	Participant *EnsureParticipantUseCase
}

func NewSendMessageUseCase(repo repository.ChatRepository) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Participant: NewEnsureParticipantUseCase(repo)}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	if _, err := uc.Participant.Execute(ctx, EnsureParticipantInput{
		ConversationID: in.ConversationID,
		CallerID:       in.SenderID,
	}); err != nil {
		return nil, err
	}

	msg, err := chat.NewMessage(chat.Message{
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Body:           in.Body,
	})
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			return nil, fmt.Errorf("%w: message body is empty", ErrInvalidArgument)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	// Persist letting the DB generate the id.
	id, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id
	return msg, nil
}
