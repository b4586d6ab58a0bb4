package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/application/domain"
	repository "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/persistence/repository/port"
)

// MarkReadInput identifies the message to flag and the acting caller.
type MarkReadInput struct {
	ConversationID string
	MessageID      string
	CallerID       string
}

// MarkReadUseCase flips a message's read flag. Re-marking an already-read
// message succeeds and returns the unchanged row.
type MarkReadUseCase struct {
	Repo        repository.ChatRepository
	Participant *EnsureParticipantUseCase
}

func NewMarkReadUseCase(repo repository.ChatRepository) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo, Participant: NewEnsureParticipantUseCase(repo)}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) (*chat.Message, error) {
	if in.MessageID == "" {
		return nil, fmt.Errorf("%w: message_id is required", ErrInvalidArgument)
	}

	if _, err := uc.Participant.Execute(ctx, EnsureParticipantInput{
		ConversationID: in.ConversationID,
		CallerID:       in.CallerID,
	}); err != nil {
		return nil, err
	}

	current, err := uc.Repo.GetMessage(ctx, in.MessageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	// A message id from another thread must not be reachable through this
	// conversation's authorization check.
	if current.ConversationID != in.ConversationID {
		return nil, ErrNotFound
	}
	if current.IsRead {
		return current, nil
	}

	updated, err := uc.Repo.MarkMessageRead(ctx, in.MessageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return updated, nil
}
