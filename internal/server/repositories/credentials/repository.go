// Package credentials stores the sealed visual password of each user.
// There is exactly one credential per user; it is replaced wholesale.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/clickpass/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Credential) error
	Get(ctx context.Context, userID string) (*models.Credential, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, userID string) (*models.Credential, error)
	Replace(ctx context.Context, c *models.Credential) error
}
