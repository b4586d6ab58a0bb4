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

// GetHistoryController serves one history page over request/response for
// clients without a live socket (initial load, backfill). Same use case and
// the same authorization path as the websocket join.
type GetHistoryController struct {
	UC *usecase.GetHistoryUseCase
}

func NewGetHistoryController(repo repository.ChatRepository) *GetHistoryController {
	return &GetHistoryController{UC: usecase.NewGetHistoryUseCase(repo)}
}

func (h *GetHistoryController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}

		in := usecase.GetHistoryInput{
			ConversationID: c.Param("conversationId"),
			CallerID:       identity.ID,
			Cursor:         c.Query("cursor"),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		msgs, err := h.UC.Execute(ctx, in)
		if err != nil {
			replyServiceError(c, err)
			return
		}

		out := make([]gin.H, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, gin.H{
				"id":              m.ID,
				"conversation_id": m.ConversationID,
				"sender_id":       m.SenderID,
				"body":            m.Body,
				"is_read":         m.IsRead,
				"created_at":      m.CreatedAt,
			})
		}

		next := ""
		if len(msgs) == usecase.HistoryPageSize {
			next = msgs[len(msgs)-1].ID
		}

		c.JSON(http.StatusOK, gin.H{
			"messages":    out,
			"count":       len(out),
			"next_cursor": next,
		})
	}
}
