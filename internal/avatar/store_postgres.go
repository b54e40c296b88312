// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package avatar

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/avatarstudio/internal/platform/database/schema"
	"github.com/taibuivan/avatarstudio/internal/platform/dberr"
)

// PostgresAvatarRepository implements [AvatarRepository] using pgx.
//
// # Schema Table Mapping
//   - users.avatar: one row per user holding the five configuration tokens.
type PostgresAvatarRepository struct {
	pool *pgxpool.Pool
}

// NewAvatarRepository creates a new Postgres implementation for saved avatars.
func NewAvatarRepository(pool *pgxpool.Pool) *PostgresAvatarRepository {
	return &PostgresAvatarRepository{pool: pool}
}

/*
FindByOwnerID retrieves a saved avatar from the users.avatar table.

Parameters:
  - context: context.Context
  - ownerID: string

Returns:
  - *SavedAvatar: Hydrated entity
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresAvatarRepository) FindByOwnerID(context context.Context, ownerID string) (*SavedAvatar, error) {
	table := schema.UserAvatar
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		table.OwnerID, table.Hairstyle, table.HairColor, table.SkinTone,
		table.Clothing, table.ClothingColor, table.CreatedAt, table.UpdatedAt,
		table.Table, table.OwnerID,
	)

	saved := &SavedAvatar{}
	err := repository.pool.QueryRow(context, query, ownerID).Scan(
		&saved.OwnerID,
		&saved.Configuration.Hairstyle,
		&saved.Configuration.HairColor,
		&saved.Configuration.SkinTone,
		&saved.Configuration.Clothing,
		&saved.Configuration.ClothingColor,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Saved avatar", "postgres_avatar_repo_find_failed")
	}

	return saved, nil
}

/*
Upsert creates or replaces a user's saved avatar.

Description: Inserts the row, or on owner conflict overwrites the five tokens
and refreshes updatedat. createdat is preserved across updates and written
back into the entity along with updatedat.

Parameters:
  - context: context.Context
  - avatar: *SavedAvatar

Returns:
  - error: Storage failures
*/
func (repository *PostgresAvatarRepository) Upsert(context context.Context, avatar *SavedAvatar) error {
	table := schema.UserAvatar
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s
		RETURNING %s, %s`,
		table.Table,
		table.OwnerID, table.Hairstyle, table.HairColor, table.SkinTone,
		table.Clothing, table.ClothingColor, table.CreatedAt, table.UpdatedAt,
		table.OwnerID,
		table.Hairstyle, table.Hairstyle,
		table.HairColor, table.HairColor,
		table.SkinTone, table.SkinTone,
		table.Clothing, table.Clothing,
		table.ClothingColor, table.ClothingColor,
		table.UpdatedAt, table.UpdatedAt,
		table.CreatedAt, table.UpdatedAt,
	)

	cfg := avatar.Configuration
	err := repository.pool.QueryRow(context, query,
		avatar.OwnerID, cfg.Hairstyle, cfg.HairColor, cfg.SkinTone, cfg.Clothing, cfg.ClothingColor, avatar.UpdatedAt,
	).Scan(&avatar.CreatedAt, &avatar.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres_avatar_repo_upsert_failed: %w", err)
	}

	return nil
}
