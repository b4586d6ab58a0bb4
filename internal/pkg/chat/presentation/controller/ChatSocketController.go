package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/auth"
	cacheport "github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/cache/port"
	"github.com/abdulganiyy/propertiesbase-sub000/internal/infrastructure/realtime"
	chat "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/application/domain"
	"github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/application/usecase"
	repository "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/persistence/repository/port"
)

// ChatSocketController handles the websocket endpoint for realtime chat
// traffic. Each connection is authenticated once at handshake; a handshake
// failure rejects the request with 401 before the upgrade, so an
// unauthenticated socket never exists. Every join/send re-verifies
// participancy against the store; nothing is trusted from a prior join.
type ChatSocketController struct {
	hub      *realtime.Hub
	verifier auth.TokenVerifier
	presence cacheport.Cache // optional; nil disables cross-process presence keys

	sendMessageUC *usecase.SendMessageUseCase
	historyUC     *usecase.GetHistoryUseCase
	participantUC *usecase.EnsureParticipantUseCase

	inflightTimeout time.Duration
}

func NewChatSocketController(repo repository.ChatRepository, hub *realtime.Hub, verifier auth.TokenVerifier, presence cacheport.Cache) *ChatSocketController {
	return &ChatSocketController{
		hub:             hub,
		verifier:        verifier,
		presence:        presence,
		sendMessageUC:   usecase.NewSendMessageUseCase(repo),
		historyUC:       usecase.NewGetHistoryUseCase(repo),
		participantUC:   usecase.NewEnsureParticipantUseCase(repo),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard is served from a separate origin; tighten this once
		// the frontend domains are pinned down.
		return true
	},
}

// Wire protocol frames. Inbound frames carry a type tag and explicit fields;
// payloads are validated here before any service call.
type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	Body           string `json:"body,omitempty"`
}

const (
	eventJoin  = "conversation.join"
	eventLeave = "conversation.leave"
	eventSend  = "message.send"
)

type connectedFrame struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

type presenceFrame struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	Online bool   `json:"online"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type messageCreatedFrame struct {
	Type    string         `json:"type"`
	Message messagePayload `json:"message"`
}

type historyFrame struct {
	Type           string           `json:"type"`
	ConversationID string           `json:"conversation_id"`
	Messages       []messagePayload `json:"messages"`
}

type messagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"body"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

const (
	defaultReadTimeout = 60 * time.Second
	presenceTTL        = 90 * time.Second
)

// Handle upgrades HTTP connections to websocket and processes frames until
// the client disconnects. Frames from one connection are handled strictly in
// order: the read loop does not pull the next frame until the current
// handler, including its storage calls, has completed.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.BearerToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		identity, err := ctl.verifier.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; nothing more to do.
			return
		}

		conn := realtime.NewConnection(identity.ID, ws)
		ctl.hub.Attach(conn)
		slog.Info("socket attached", "user_id", identity.ID, "session_id", conn.ID)

		defer func() {
			wentOffline := ctl.hub.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			if wentOffline {
				ctl.setPresence(identity.ID, false)
				ctl.broadcastPresence(identity.ID, false)
			}
			slog.Info("socket detached", "user_id", identity.ID, "session_id", conn.ID)
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			ctl.setPresence(identity.ID, true)
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		ctl.reply(conn, connectedFrame{Type: "connected", UserID: identity.ID})
		ctl.setPresence(identity.ID, true)
		ctl.broadcastPresence(identity.ID, true)

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "read_error", err.Error())
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "invalid_argument", "invalid payload")
				continue
			}

			switch frame.Type {
			case eventJoin:
				ctl.handleJoin(c, conn, frame)
			case eventLeave:
				ctl.handleLeave(conn, frame)
			case eventSend:
				ctl.handleSend(c, conn, frame)
			default:
				ctl.replyError(conn, "invalid_argument", "unknown frame type")
			}
		}
	}
}

// handleJoin verifies participancy, subscribes the connection to the room and
// pushes the latest history page to every room member. Re-broadcasting to the
// full room on each join re-synchronizes existing members too; it is
// intentionally idempotent even though it costs an extra broadcast per join.
func (ctl *ChatSocketController) handleJoin(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "invalid_argument", "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	if _, err := ctl.participantUC.Execute(ctx, usecase.EnsureParticipantInput{
		ConversationID: frame.ConversationID,
		CallerID:       conn.UserID,
	}); err != nil {
		ctl.replyUseCaseError(conn, err)
		return
	}

	ctl.hub.Join(frame.ConversationID, conn)

	msgs, err := ctl.historyUC.Execute(ctx, usecase.GetHistoryInput{
		ConversationID: frame.ConversationID,
		CallerID:       conn.UserID,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, err)
		return
	}

	out := historyFrame{Type: "history", ConversationID: frame.ConversationID, Messages: toPayloads(msgs)}
	payload, err := json.Marshal(out)
	if err != nil {
		ctl.replyError(conn, "internal_error", "failed to encode history")
		return
	}
	ctl.hub.Broadcast(frame.ConversationID, payload)
}

// handleLeave unsubscribes the connection. Leaving needs no authorization.
func (ctl *ChatSocketController) handleLeave(conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "invalid_argument", "conversation_id is required")
		return
	}
	ctl.hub.Leave(frame.ConversationID, conn)
}

// handleSend persists the message and fans the committed record out to the
// room. The sender receives the same broadcast instead of echoing locally,
// so every client renders the identical stored message. Room members observe
// messages in commit order, not send-initiation order.
func (ctl *ChatSocketController) handleSend(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "invalid_argument", "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	msg, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		ConversationID: frame.ConversationID,
		SenderID:       conn.UserID,
		Body:           frame.Body,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, err)
		return
	}

	out := messageCreatedFrame{Type: "message.created", Message: toPayload(*msg)}
	payload, err := json.Marshal(out)
	if err != nil {
		ctl.replyError(conn, "internal_error", "failed to encode message")
		return
	}

	ctl.hub.Broadcast(frame.ConversationID, payload)
	// A sender who never joined the room still gets the committed record.
	if !ctl.hub.InRoom(frame.ConversationID, conn.ID) {
		_ = conn.Send(payload)
	}
}

// replyUseCaseError maps the service taxonomy onto protocol error codes,
// scoped to the offending connection only. The room is never told why a
// peer's action failed.
func (ctl *ChatSocketController) replyUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrForbidden):
		ctl.replyError(conn, "forbidden", "not a participant in this conversation")
	case errors.Is(err, usecase.ErrNotFound):
		ctl.replyError(conn, "not_found", "conversation not found")
	case errors.Is(err, usecase.ErrInvalidArgument):
		ctl.replyError(conn, "invalid_argument", err.Error())
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	default:
		ctl.replyError(conn, "internal_error", "unexpected error")
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code string, message string) {
	ctl.reply(conn, errorFrame{Type: "error", Code: code, Error: message})
}

func (ctl *ChatSocketController) reply(conn *realtime.Connection, frame any) {
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) broadcastPresence(userID string, online bool) {
	payload, err := json.Marshal(presenceFrame{Type: "presence", UserID: userID, Online: online})
	if err != nil {
		return
	}
	ctl.hub.BroadcastAll(payload)
}

// setPresence keeps a best-effort TTL key in the cache so other processes can
// answer "is this user online" without reaching the hub. Failures are logged
// and ignored; realtime presence events do not depend on the cache.
func (ctl *ChatSocketController) setPresence(userID string, online bool) {
	if ctl.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var err error
	if online {
		err = ctl.presence.Set(ctx, "presence:"+userID, "online", presenceTTL)
	} else {
		_, err = ctl.presence.Del(ctx, "presence:"+userID)
	}
	if err != nil {
		slog.Warn("presence cache update failed", "user_id", userID, "online", online, "err", err)
	}
}

func toPayload(msg chat.Message) messagePayload {
	return messagePayload{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Body:           msg.Body,
		IsRead:         msg.IsRead,
		CreatedAt:      msg.CreatedAt,
	}
}

func toPayloads(msgs []chat.Message) []messagePayload {
	out := make([]messagePayload, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toPayload(m))
	}
	return out
}
