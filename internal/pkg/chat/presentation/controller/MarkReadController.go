package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/auth"
	"github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/application/usecase"
	repository "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/persistence/repository/port"
)

// MarkReadController flips a message's read flag. Idempotent: re-marking an
// already-read message returns 200 with the unchanged row.
type MarkReadController struct {
	UC *usecase.MarkReadUseCase
}

func NewMarkReadController(repo repository.ChatRepository) *MarkReadController {
	return &MarkReadController{UC: usecase.NewMarkReadUseCase(repo)}
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}

		in := usecase.MarkReadInput{
			ConversationID: c.Param("conversationId"),
			MessageID:      c.Param("messageId"),
			CallerID:       identity.ID,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		msg, err := h.UC.Execute(ctx, in)
		if err != nil {
			replyServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":              msg.ID,
			"conversation_id": msg.ConversationID,
			"sender_id":       msg.SenderID,
			"body":            msg.Body,
			"is_read":         msg.IsRead,
			"created_at":      msg.CreatedAt,
		})
	}
}
