package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	chat "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/application/domain"
	repository "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/persistence/repository/port"
)

// CreateOrGetConversationInput carries the property and the contacting user.
type CreateOrGetConversationInput struct {
	PropertyID string
	CallerID   string
}

// CreateOrGetConversationUseCase locates the conversation for a property or
// creates it on first contact, with the property's owner on one side and the
// caller on the other.
//
// The lookup keys on property_id only, so every later caller joins the first
// thread for that property, whoever opened it. Concurrent first creation is
// guarded by the store's partial unique index on property_id, not by logic
// here.
type CreateOrGetConversationUseCase struct {
	Repo       repository.ChatRepository
	Properties repository.PropertyRepository
}

func NewCreateOrGetConversationUseCase(repo repository.ChatRepository, props repository.PropertyRepository) *CreateOrGetConversationUseCase {
	return &CreateOrGetConversationUseCase{Repo: repo, Properties: props}
}

func (uc *CreateOrGetConversationUseCase) Execute(ctx context.Context, in CreateOrGetConversationInput) (*chat.Conversation, error) {
	if in.PropertyID == "" || in.CallerID == "" {
		return nil, fmt.Errorf("%w: property_id and caller_id are required", ErrInvalidArgument)
	}

	prop, err := uc.Properties.GetProperty(ctx, in.PropertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	existing, err := uc.Repo.GetConversationByProperty(ctx, in.PropertyID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	conv := chat.Conversation{
		PropertyID: in.PropertyID,
		OwnerID:    prop.OwnerID,
		UserID:     in.CallerID,
		CreatedAt:  time.Now().UTC(),
	}
	id, err := uc.Repo.CreateConversation(ctx, conv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	conv.ID = id
	return &conv, nil
}
