package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/application/domain"
	repository "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/persistence/repository/port"
)

// HistoryPageSize caps every history page. Clients page forward by passing
// the last returned message id as the next cursor.
const HistoryPageSize = 30

// GetHistoryInput carries parameters to fetch one page of a conversation's
// messages. Cursor is a message id; the page starts strictly after it.
type GetHistoryInput struct {
	ConversationID string
	CallerID       string
	Cursor         string
}

// GetHistoryUseCase returns messages ordered by created_at ascending. Each
// call is a fresh page fetch, not a live stream; callers re-invoke with the
// previous page's last id to continue.
type GetHistoryUseCase struct {
	Repo        repository.ChatRepository
	Participant *EnsureParticipantUseCase
}

func NewGetHistoryUseCase(repo repository.ChatRepository) *GetHistoryUseCase {
	return &GetHistoryUseCase{Repo: repo, Participant: NewEnsureParticipantUseCase(repo)}
}

func (uc *GetHistoryUseCase) Execute(ctx context.Context, in GetHistoryInput) ([]chat.Message, error) {
	if _, err := uc.Participant.Execute(ctx, EnsureParticipantInput{
		ConversationID: in.ConversationID,
		CallerID:       in.CallerID,
	}); err != nil {
		return nil, err
	}

	msgs, err := uc.Repo.ListMessagesAfter(ctx, in.ConversationID, in.Cursor, HistoryPageSize)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// The cursor did not resolve to a message in this conversation.
			return nil, fmt.Errorf("%w: unknown cursor", ErrInvalidArgument)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
