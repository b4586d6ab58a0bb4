package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/application/domain"
	repository "github.com/abdulganiyy/propertiesbase-sub000/internal/pkg/chat/persistence/repository/port"
)

// PgPropertyRepository reads the marketplace property table owned by the
// property CRUD service. This service only ever needs the owner lookup.
type PgPropertyRepository struct {
	pool *pgxpool.Pool
}

func NewPgPropertyRepository(pool *pgxpool.Pool) *PgPropertyRepository {
	return &PgPropertyRepository{pool: pool}
}

var _ repository.PropertyRepository = (*PgPropertyRepository)(nil)

func (r *PgPropertyRepository) GetProperty(ctx context.Context, id string) (*chat.Property, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgPropertyRepository: nil pool")
	}
	var p chat.Property
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, owner_id::text, is_deleted
		FROM properties
		WHERE id = $1::uuid
	`, id).Scan(&p.ID, &p.OwnerID, &p.IsDeleted)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if p.IsDeleted {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}
