package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/auth"
	cacheport "github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/cache/port"
	"github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/realtime"
	httpHandler "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, hub *realtime.Hub, verifier auth.TokenVerifier, presence cacheport.Cache) {
	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, pool, hub, verifier, presence)
}
