package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/clickpass/internal/dbx"
	"github.com/dmitrijs2005/clickpass/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/clickpass/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/clickpass/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// path works on the pool and inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
