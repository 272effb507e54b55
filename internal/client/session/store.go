// Package session keeps the last signed-in account and its bearer token in a
// local SQLite file so that the client can resume without a password prompt.
package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophgate/internal/client/migrations"
	"github.com/dmitrijs2005/gophgate/internal/client/repositories/settings"
	"github.com/dmitrijs2005/gophgate/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const (
	keyEmail = "email"
	keyToken = "token"
)

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at dsn and applies pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate session store: %w", err)
	}
	return &Store{db: db}, nil
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *Store) repo(db dbx.DBTX) settings.Repository {
	return settings.NewSQLiteRepository(db)
}

// Load returns the cached email and token. Both are empty when nothing is cached.
func (s *Store) Load(ctx context.Context) (email, token string, err error) {
	r := s.repo(s.db)

	if email, _, err = r.Get(ctx, keyEmail); err != nil {
		return "", "", err
	}
	if token, _, err = r.Get(ctx, keyToken); err != nil {
		return "", "", err
	}
	return email, token, nil
}

// Save replaces the cached account in one transaction.
func (s *Store) Save(ctx context.Context, email, token string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := s.repo(tx)
		if err := r.Put(ctx, keyEmail, email); err != nil {
			return err
		}
		return r.Put(ctx, keyToken, token)
	})
}

// Forget drops the cached token but keeps the email as a login hint.
func (s *Store) Forget(ctx context.Context) error {
	return s.repo(s.db).Delete(ctx, keyToken)
}

func (s *Store) Clear(ctx context.Context) error {
	return s.repo(s.db).Clear(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
