package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/application/domain"
	repository "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/persistence/repository/port"
)

// EnsureParticipantInput identifies the conversation and the caller to check.
type EnsureParticipantInput struct {
	ConversationID string
	CallerID       string
}

// EnsureParticipantUseCase loads a conversation and verifies the caller is
// one of its two fixed participants. Every other conversation use case calls
// this first instead of re-implementing the check. Authorization is
// re-derived on every call; nothing is cached between operations.
type EnsureParticipantUseCase struct {
	Repo repository.ChatRepository
}

func NewEnsureParticipantUseCase(repo repository.ChatRepository) *EnsureParticipantUseCase {
	return &EnsureParticipantUseCase{Repo: repo}
}

// Execute returns the conversation on success. Missing or soft-deleted
// conversations yield ErrNotFound; a non-participant caller yields
// ErrForbidden with no hint of which side failed to match.
func (uc *EnsureParticipantUseCase) Execute(ctx context.Context, in EnsureParticipantInput) (*chat.Conversation, error) {
	if in.ConversationID == "" || in.CallerID == "" {
		return nil, fmt.Errorf("%w: conversation_id and caller_id are required", ErrInvalidArgument)
	}

	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if conv.IsDeleted {
		return nil, ErrNotFound
	}
	if !conv.HasParticipant(in.CallerID) {
		return nil, ErrForbidden
	}
	return conv, nil
}
