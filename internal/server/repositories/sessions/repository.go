// Package sessions stores issued sessions. A session token is only honoured
// while its row exists and is unexpired.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Session) error
	// Find returns common.ErrorNotFound when the session does not exist.
	Find(ctx context.Context, id string) (*models.Session, error)
	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions expired at now and reports how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
