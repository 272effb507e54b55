// Package repomanager vends repositories bound to a database handle and
// owns schema migrations and transactions for the chosen backend.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophgate/internal/dbx"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/users"
)

type RepositoryManager interface {
	// RunMigrations brings the schema up to date.
	RunMigrations(ctx context.Context) error
	// Conn is the non-transactional handle.
	Conn() dbx.DBTX
	Users(db dbx.DBTX) users.Repository
	// WithTx runs fn with a transactional handle.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
	Close() error
}
