package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "github.com/abdulganiyy/propertiesbase-sub000/cmd/api/router/v1"
	"github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/auth"
	cacheAdapter "github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/cache/adapter"
	cacheport "github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/cache/port"
	"github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/database"
	queueAdapter "github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/queue/adapter"
	"github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/realtime"
	"github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/application/task"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found or could not be loaded", "err", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := database.NewPoolFromEnv(connectCtx)
	if err != nil {
		slog.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	verifier, err := auth.NewJWTVerifierFromEnv()
	if err != nil {
		slog.Error("failed to configure token verifier", "err", err)
		os.Exit(1)
	}

	// Presence cache is best-effort: without Redis the realtime presence
	// events still work, only the cross-process lookup keys are missing.
	var presence cacheport.Cache
	if redisCache, err := cacheAdapter.NewRedisAdapter(); err != nil {
		slog.Warn("presence cache unavailable", "err", err)
	} else {
		presence = redisCache
		defer redisCache.Close()
	}

	// Background workers for queued cascades (property deletions).
	if worker, err := queueAdapter.NewAsynqServer(); err != nil {
		slog.Warn("task worker unavailable", "err", err)
	} else {
		task.RegisterPropertyDeletedTask(worker, pool)
		go func() {
			if err := worker.Run(ctx); err != nil {
				slog.Error("task worker stopped", "err", err)
			}
		}()
	}

	hub := realtime.NewHub()
	defer hub.Close()

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	v1.RegisterRoutes(r, pool, hub, verifier, presence)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("chat service listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
