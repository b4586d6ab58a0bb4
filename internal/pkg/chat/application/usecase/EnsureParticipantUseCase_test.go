package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureParticipant_OwnerAndUserAllowed(t *testing.T) {
	repo := newMockChatRepo()
	conv := repo.addConversation("prop-1", "owner-1", "user-1")

	uc := NewEnsureParticipantUseCase(repo)

	for _, caller := range []string{"owner-1", "user-1"} {
		got, err := uc.Execute(context.Background(), EnsureParticipantInput{
			ConversationID: conv.ID,
			CallerID:       caller,
		})
		require.NoError(t, err, "caller %s", caller)
		assert.Equal(t, conv.ID, got.ID)
	}
}

func TestEnsureParticipant_StrangerForbidden(t *testing.T) {
	repo := newMockChatRepo()
	conv := repo.addConversation("prop-1", "owner-1", "user-1")

	uc := NewEnsureParticipantUseCase(repo)

	_, err := uc.Execute(context.Background(), EnsureParticipantInput{
		ConversationID: conv.ID,
		CallerID:       "stranger",
	})
	assert.ErrorIs(t, err, ErrForbidden)
	// The error must not reveal which side failed to match.
	assert.NotContains(t, err.Error(), "owner")
	assert.NotContains(t, err.Error(), "user")
}

func TestEnsureParticipant_MissingConversation(t *testing.T) {
	uc := NewEnsureParticipantUseCase(newMockChatRepo())

	_, err := uc.Execute(context.Background(), EnsureParticipantInput{
		ConversationID: "conv-404",
		CallerID:       "owner-1",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureParticipant_SoftDeletedConversation(t *testing.T) {
	repo := newMockChatRepo()
	conv := repo.addConversation("prop-1", "owner-1", "user-1")
	conv.IsDeleted = true

	uc := NewEnsureParticipantUseCase(repo)

	_, err := uc.Execute(context.Background(), EnsureParticipantInput{
		ConversationID: conv.ID,
		CallerID:       "owner-1",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureParticipant_MissingIDs(t *testing.T) {
	uc := NewEnsureParticipantUseCase(newMockChatRepo())

	_, err := uc.Execute(context.Background(), EnsureParticipantInput{CallerID: "x"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = uc.Execute(context.Background(), EnsureParticipantInput{ConversationID: "c"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
