package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/auth"
	cacheport "github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/cache/port"
	"github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/realtime"
	"github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/persistence/repository/adapter"
	"github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/presentation/controller"
)

// RegisterRoutes registers chat endpoints under the given router group.
// REST handlers and the websocket gateway share the same repositories and
// use cases, so there is exactly one authorization code path per operation.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, hub *realtime.Hub, verifier auth.TokenVerifier, presence cacheport.Cache) {
	repo := adapter.NewPgChatRepository(pool)
	props := adapter.NewPgPropertyRepository(pool)

	inboxCtl := controller.NewInboxController(repo)
	createCtl := controller.NewCreateConversationController(repo, props)
	historyCtl := controller.NewGetHistoryController(repo)
	markReadCtl := controller.NewMarkReadController(repo)
	socketCtl := controller.NewChatSocketController(repo, hub, verifier, presence)

	authed := g.Group("", auth.Middleware(verifier))

	// GET /api/v1/conversations -> caller's inbox
	authed.GET("/conversations", inboxCtl.Handle())

	// POST /api/v1/properties/:propertyId/conversations -> open or locate the property's thread
	authed.POST("/properties/:propertyId/conversations", createCtl.Handle())

	// GET /api/v1/conversations/:conversationId/history?cursor= -> one history page
	authed.GET("/conversations/:conversationId/history", historyCtl.Handle())

	// POST /api/v1/conversations/:conversationId/messages/:messageId/read -> flip read flag
	authed.POST("/conversations/:conversationId/messages/:messageId/read", markReadCtl.Handle())

	// GET /api/v1/chat/ws -> websocket endpoint; authenticates during handshake
	g.GET("/chat/ws", socketCtl.Handle())
}
