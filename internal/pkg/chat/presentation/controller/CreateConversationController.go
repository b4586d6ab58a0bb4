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

// CreateConversationController handles opening (or re-locating) the
// conversation for a property. One controller per endpoint.
type CreateConversationController struct {
	UC *usecase.CreateOrGetConversationUseCase
}

func NewCreateConversationController(repo repository.ChatRepository, props repository.PropertyRepository) *CreateConversationController {
	return &CreateConversationController{UC: usecase.NewCreateOrGetConversationUseCase(repo, props)}
}

func (h *CreateConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}

		in := usecase.CreateOrGetConversationInput{
			PropertyID: c.Param("propertyId"),
			CallerID:   identity.ID,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		conv, err := h.UC.Execute(ctx, in)
		if err != nil {
			replyServiceError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":              conv.ID,
			"property_id":     conv.PropertyID,
			"owner_id":        conv.OwnerID,
			"user_id":         conv.UserID,
			"last_message_at": conv.LastMessageAt,
			"created_at":      conv.CreatedAt,
		})
	}
}
