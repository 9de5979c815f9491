package postgres

import (
	"context"
	"errors"

	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type configRepo struct {
	db *pgxpool.Pool
}

func NewConfigRepository(db *pgxpool.Pool) domain.ConfigRepository {
	return &configRepo{db: db}
}

func (r *configRepo) Get(ctx context.Context, id string) (*domain.SystemConfiguration, error) {
	query := `
		SELECT id, configuration, version, updated_by, created_at, updated_at
		FROM system_configurations
		WHERE id = $1
	`
	var cfg domain.SystemConfiguration
	err := r.db.QueryRow(ctx, query, id).Scan(
		&cfg.ID, &cfg.Configuration, &cfg.Version, &cfg.UpdatedBy, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, apperror.Internal(err)
	}
	return &cfg, nil
}

func (r *configRepo) Upsert(ctx context.Context, id string, document []byte, updatedBy *int64) (*domain.SystemConfiguration, error) {
	query := `
		INSERT INTO system_configurations (id, configuration, version, updated_by)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (id) DO UPDATE
		SET configuration = EXCLUDED.configuration,
		    version = system_configurations.version + 1,
		    updated_by = EXCLUDED.updated_by,
		    updated_at = NOW()
		RETURNING id, configuration, version, updated_by, created_at, updated_at
	`
	var cfg domain.SystemConfiguration
	err := r.db.QueryRow(ctx, query, id, document, updatedBy).Scan(
		&cfg.ID, &cfg.Configuration, &cfg.Version, &cfg.UpdatedBy, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &cfg, nil
}
