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

// InboxController lists the caller's conversations, newest activity first.
type InboxController struct {
	UC *usecase.ListConversationsUseCase
}

func NewInboxController(repo repository.ChatRepository) *InboxController {
	return &InboxController{UC: usecase.NewListConversationsUseCase(repo)}
}

func (h *InboxController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		summaries, err := h.UC.Execute(ctx, usecase.ListConversationsInput{CallerID: identity.ID})
		if err != nil {
			replyServiceError(c, err)
			return
		}

		out := make([]gin.H, 0, len(summaries))
		for _, s := range summaries {
			row := gin.H{
				"id":              s.Conversation.ID,
				"property_id":     s.Conversation.PropertyID,
				"owner_id":        s.Conversation.OwnerID,
				"user_id":         s.Conversation.UserID,
				"last_message_at": s.Conversation.LastMessageAt,
				"counterpart": gin.H{
					"id":         s.Counterpart.ID,
					"name":       s.Counterpart.Name,
					"avatar_url": s.Counterpart.AvatarURL,
				},
			}
			if s.LastMessage != nil {
				row["last_message"] = gin.H{
					"id":         s.LastMessage.ID,
					"sender_id":  s.LastMessage.SenderID,
					"body":       s.LastMessage.Body,
					"is_read":    s.LastMessage.IsRead,
					"created_at": s.LastMessage.CreatedAt,
				}
			}
			out = append(out, row)
		}

		c.JSON(http.StatusOK, gin.H{"conversations": out, "count": len(out)})
	}
}
