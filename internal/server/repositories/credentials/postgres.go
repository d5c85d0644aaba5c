package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clickpass/internal/common"
	"github.com/dmitrijs2005/clickpass/internal/dbx"
	"github.com/dmitrijs2005/clickpass/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Credential) error {
	query := `
		INSERT INTO credentials (user_id, pattern, points)
		VALUES ($1, $2, $3)
		RETURNING updated_at
	`
	if err := r.db.QueryRowContext(ctx, query, c.UserID, c.Sealed, c.Points).Scan(&c.UpdatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Credential, error) {
	query := `
		SELECT user_id, pattern, points, updated_at
		FROM credentials
		WHERE user_id = $1
	`
	return r.getOne(ctx, query, userID)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, userID string) (*models.Credential, error) {
	query := `
		SELECT user_id, pattern, points, updated_at
		FROM credentials
		WHERE user_id = $1
		FOR UPDATE
	`
	return r.getOne(ctx, query, userID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query, userID string) (*models.Credential, error) {
	c := &models.Credential{}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&c.UserID, &c.Sealed, &c.Points, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// Replace overwrites the stored pattern. common.ErrorNotFound when the user
// has no credential.
func (r *PostgresRepository) Replace(ctx context.Context, c *models.Credential) error {
	query := `
		UPDATE credentials
		SET pattern = $2, points = $3, updated_at = now()
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, c.UserID, c.Sealed, c.Points)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
