// Package users declares and implements storage of user accounts.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills ID and CreatedAt. A duplicate
	// username yields common.ErrUsernameTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
