package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/dbx"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/google/uuid"
)

// Roles travel as comma-joined text so database/sql needs no array codec.
const rolesSeparator = ","

type PostgresRepository struct {
	db     dbx.DBTX
	hasher models.PasswordHasher
}

func NewPostgresRepository(db dbx.DBTX, hasher models.PasswordHasher) *PostgresRepository {
	return &PostgresRepository{db: db, hasher: hasher}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := user.BeforeWrite(r.hasher); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	query :=
		`INSERT INTO users (email, password_hash, full_name, is_active, roles)
		 VALUES ($1, $2, $3, $4, string_to_array($5, ','))
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FullName, user.IsActive, strings.Join(user.Roles, rolesSeparator)).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, mapWriteError(err)
	}

	return user, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query :=
		`SELECT id, email, full_name, is_active, array_to_string(roles, ','), created_at, updated_at
		 FROM users
		 WHERE id = $1
		 `

	return scanUser(r.db.QueryRowContext(ctx, query, id), false)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string, withPassword bool) (*models.User, error) {
	query :=
		`SELECT id, email, full_name, is_active, array_to_string(roles, ','), created_at, updated_at
		 FROM users
		 WHERE email = $1
		 `
	if withPassword {
		query =
			`SELECT id, email, full_name, is_active, array_to_string(roles, ','), created_at, updated_at, password_hash
			 FROM users
			 WHERE email = $1
			 `
	}

	return scanUser(r.db.QueryRowContext(ctx, query, models.NormalizeEmail(email)), withPassword)
}

func (r *PostgresRepository) Save(ctx context.Context, user *models.User) (*models.User, error) {
	if _, err := uuid.Parse(user.ID); err != nil {
		return nil, common.ErrorNotFound
	}
	if err := user.BeforeWrite(r.hasher); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// An empty hash means the caller loaded the user without it; keep the stored one.
	query :=
		`UPDATE users
		 SET email = $2,
		     password_hash = COALESCE(NULLIF($3, ''), password_hash),
		     full_name = $4,
		     is_active = $5,
		     roles = string_to_array($6, ','),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.IsActive, strings.Join(user.Roles, rolesSeparator)).
		Scan(&user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, mapWriteError(err)
	}

	return user, nil
}

func scanUser(row *sql.Row, withPassword bool) (*models.User, error) {
	user := &models.User{}
	var roles string

	dest := []any{&user.ID, &user.Email, &user.FullName, &user.IsActive, &roles, &user.CreatedAt, &user.UpdatedAt}
	if withPassword {
		dest = append(dest, &user.PasswordHash)
	}

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Roles = splitRoles(roles)
	return user, nil
}

func splitRoles(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, rolesSeparator)
}

func mapWriteError(err error) error {
	if detail, ok := dbx.UniqueViolation(err); ok {
		return &common.DuplicateEmailError{Detail: detail}
	}
	return fmt.Errorf("db error: %w", err)
}
