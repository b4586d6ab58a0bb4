package usecase

import (
	"context"
	"fmt"

	chat "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/application/domain"
	repository "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/persistence/repository/port"
)

// ListConversationsInput wraps the caller whose inbox is requested.
type ListConversationsInput struct {
	CallerID string
}

// ListConversationsUseCase returns the caller's inbox: every non-deleted
// conversation they participate in, newest activity first, each row carrying
// the latest message and the counterpart's profile.
type ListConversationsUseCase struct {
	Repo repository.ChatRepository
}

func NewListConversationsUseCase(repo repository.ChatRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]chat.ConversationSummary, error) {
	if in.CallerID == "" {
		return nil, fmt.Errorf("%w: caller_id is required", ErrInvalidArgument)
	}

	summaries, err := uc.Repo.ListConversationsForUser(ctx, in.CallerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return summaries, nil
}
