package task

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	qport "github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/queue/port"
	repoAdapter "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/persistence/repository/adapter"
)

// PropertyDeletedTaskType is the queue task name for cascading a property
// deletion into the chat domain. The property CRUD service enqueues it when
// a listing is removed; this service soft-deletes the property's
// conversations so they drop out of inboxes while their messages remain.
const PropertyDeletedTaskType = "chat:property_deleted"

// PropertyDeletedPayload is the JSON payload transported via the queue.
type PropertyDeletedPayload struct {
	PropertyID string `json:"propertyId"`
}

// EnqueuePropertyDeleted schedules the cascade for the given property.
// Nothing in this binary calls it: the property CRUD service owns listing
// deletion and enqueues from its own process against the shared Redis.
// UniqueTTL keeps a burst of delete events from stacking duplicate tasks.
func EnqueuePropertyDeleted(ctx context.Context, client qport.Client, propertyID string) (string, error) {
	b, err := json.Marshal(PropertyDeletedPayload{PropertyID: propertyID})
	if err != nil {
		return "", err
	}
	opts := qport.EnqueueOption{Queue: "chat", MaxRetry: 10, UniqueTTL: time.Minute}
	return client.Enqueue(ctx, qport.Task{Type: PropertyDeletedTaskType, Payload: b}, opts)
}

// RegisterPropertyDeletedTask binds the cascade handler to the worker server.
// The handler is idempotent: re-running it on an already-cascaded property
// affects zero rows.
func RegisterPropertyDeletedTask(srv qport.Server, pool *pgxpool.Pool) {
	srv.Register(PropertyDeletedTaskType, func(ctx context.Context, t qport.Task) error {
		var p PropertyDeletedPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying will not help
			return err
		}

		repo := repoAdapter.NewPgChatRepository(pool)

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		n, err := repo.SoftDeleteConversationsByProperty(ctx, p.PropertyID)
		if err != nil {
			return err
		}
		slog.Info("property deletion cascaded to chat", "property_id", p.PropertyID, "conversations", n)
		return nil
	})
}
