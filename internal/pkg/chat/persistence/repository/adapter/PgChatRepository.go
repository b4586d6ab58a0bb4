package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/application/domain"
	repository "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/persistence/repository/port"
)

const defaultPageSize = 30

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

func (r *PgChatRepository) GetConversation(ctx context.Context, id string) (*chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var c chat.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, property_id::text, owner_id::text, user_id::text, last_message_at, is_deleted, created_at
		FROM chat.conversation
		WHERE id = $1::uuid
	`, id).Scan(&c.ID, &c.PropertyID, &c.OwnerID, &c.UserID, &c.LastMessageAt, &c.IsDeleted, &c.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &c, nil
}

func (r *PgChatRepository) GetConversationByProperty(ctx context.Context, propertyID string) (*chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var c chat.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, property_id::text, owner_id::text, user_id::text, last_message_at, is_deleted, created_at
		FROM chat.conversation
		WHERE property_id = $1::uuid AND is_deleted = false
	`, propertyID).Scan(&c.ID, &c.PropertyID, &c.OwnerID, &c.UserID, &c.LastMessageAt, &c.IsDeleted, &c.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &c, nil
}

func (r *PgChatRepository) CreateConversation(ctx context.Context, c chat.Conversation) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.conversation (property_id, owner_id, user_id, created_at)
		VALUES ($1::uuid, $2::uuid, $3::uuid, $4)
		RETURNING id::text
	`, c.PropertyID, c.OwnerID, c.UserID, c.CreatedAt).Scan(&id)
	return id, err
}

// SaveMessage inserts the message and bumps last_message_at on the owning
// conversation within one transaction, so a failed insert never moves the
// inbox ordering watermark.
func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("save message: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, sender_id, body, is_read, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5)
		RETURNING id::text
	`, m.ConversationID, m.SenderID, m.Body, m.IsRead, m.CreatedAt).Scan(&id)
	if err != nil {
		return "", err
	}

	_, err = tx.Exec(ctx, `
		UPDATE chat.conversation
		SET last_message_at = $2
		WHERE id = $1::uuid
	`, m.ConversationID, m.CreatedAt)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("save message: commit: %w", err)
	}
	return id, nil
}

func (r *PgChatRepository) GetMessage(ctx context.Context, id string) (*chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var m chat.Message
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, body, is_read, created_at
		FROM chat.message
		WHERE id = $1::uuid
	`, id).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &m, nil
}

func (r *PgChatRepository) MarkMessageRead(ctx context.Context, id string) (*chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var m chat.Message
	err := r.pool.QueryRow(ctx, `
		UPDATE chat.message
		SET is_read = true
		WHERE id = $1::uuid
		RETURNING id::text, conversation_id::text, sender_id::text, body, is_read, created_at
	`, id).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &m, nil
}

func (r *PgChatRepository) ListMessagesAfter(ctx context.Context, conversationID string, afterID string, limit int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 || limit > defaultPageSize {
		limit = defaultPageSize
	}

	var (
		rows pgx.Rows
		err  error
	)
	if afterID == "" {
		rows, err = r.pool.Query(ctx, `
			SELECT id::text, conversation_id::text, sender_id::text, body, is_read, created_at
			FROM chat.message
			WHERE conversation_id = $1::uuid
			ORDER BY created_at ASC, id ASC
			LIMIT $2
		`, conversationID, limit)
	} else {
		// Keyset pagination: resolve the cursor row, then page strictly
		// after its (created_at, id) position. The cursor row itself is
		// never part of the result.
		var cursorAt time.Time
		err = r.pool.QueryRow(ctx, `
			SELECT created_at FROM chat.message
			WHERE id = $1::uuid AND conversation_id = $2::uuid
		`, afterID, conversationID).Scan(&cursorAt)
		if err != nil {
			return nil, mapNoRows(err)
		}
		rows, err = r.pool.Query(ctx, `
			SELECT id::text, conversation_id::text, sender_id::text, body, is_read, created_at
			FROM chat.message
			WHERE conversation_id = $1::uuid AND (created_at, id) > ($2, $3::uuid)
			ORDER BY created_at ASC, id ASC
			LIMIT $4
		`, conversationID, cursorAt, afterID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

func (r *PgChatRepository) ListConversationsForUser(ctx context.Context, userID string) ([]chat.ConversationSummary, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.property_id::text, c.owner_id::text, c.user_id::text,
		       c.last_message_at, c.is_deleted, c.created_at,
		       m.id::text, m.sender_id::text, m.body, m.is_read, m.created_at,
		       u.id::text, u.name, COALESCE(u.avatar_url, '')
		FROM chat.conversation c
		JOIN users u
		  ON u.id = CASE WHEN c.owner_id = $1::uuid THEN c.user_id ELSE c.owner_id END
		LEFT JOIN LATERAL (
			SELECT id, sender_id, body, is_read, created_at
			FROM chat.message
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) m ON true
		WHERE (c.owner_id = $1::uuid OR c.user_id = $1::uuid) AND c.is_deleted = false
		ORDER BY c.last_message_at DESC NULLS LAST
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chat.ConversationSummary
	for rows.Next() {
		var (
			s         chat.ConversationSummary
			msgID     *string
			msgSender *string
			msgBody   *string
			msgRead   *bool
			msgAt     *time.Time
		)
		if err := rows.Scan(
			&s.Conversation.ID, &s.Conversation.PropertyID, &s.Conversation.OwnerID, &s.Conversation.UserID,
			&s.Conversation.LastMessageAt, &s.Conversation.IsDeleted, &s.Conversation.CreatedAt,
			&msgID, &msgSender, &msgBody, &msgRead, &msgAt,
			&s.Counterpart.ID, &s.Counterpart.Name, &s.Counterpart.AvatarURL,
		); err != nil {
			return nil, err
		}
		if msgID != nil {
			s.LastMessage = &chat.Message{
				ID:             *msgID,
				ConversationID: s.Conversation.ID,
				SenderID:       *msgSender,
				Body:           *msgBody,
				IsRead:         *msgRead,
				CreatedAt:      *msgAt,
			}
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *PgChatRepository) SoftDeleteConversationsByProperty(ctx context.Context, propertyID string) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgChatRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat.conversation
		SET is_deleted = true
		WHERE property_id = $1::uuid AND is_deleted = false
	`, propertyID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}
