package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testID = "0b6c5f8e-8f0e-4d5c-9a55-3d4a1f1c2b77"

	insertQuery = `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*password_hash,\s*full_name,\s*is_active,\s*roles\)\s*` +
		`VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*string_to_array\(\$5,\s*','\)\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`
	selectByIDQuery = `(?s)^SELECT\s+id,\s*email,\s*full_name,\s*is_active,\s*array_to_string\(roles,\s*','\),\s*created_at,\s*updated_at\s+` +
		`FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	selectByEmailQuery = `(?s)^SELECT\s+id,\s*email,\s*full_name,\s*is_active,\s*array_to_string\(roles,\s*','\),\s*created_at,\s*updated_at\s+` +
		`FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	selectByEmailWithPasswordQuery = `(?s)^SELECT\s+id,\s*email,\s*full_name,\s*is_active,\s*array_to_string\(roles,\s*','\),\s*created_at,\s*updated_at,\s*password_hash\s+` +
		`FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	updateQuery = `(?s)^UPDATE\s+users\s+SET\s+email\s*=\s*\$2,\s*password_hash\s*=\s*COALESCE\(NULLIF\(\$3,\s*''\),\s*password_hash\),\s*` +
		`full_name\s*=\s*\$4,\s*is_active\s*=\s*\$5,\s*roles\s*=\s*string_to_array\(\$6,\s*','\),\s*updated_at\s*=\s*now\(\)\s+` +
		`WHERE\s+id\s*=\s*\$1\s+RETURNING\s+updated_at\s*$`
)

var userColumns = []string{"id", "email", "full_name", "is_active", "roles", "created_at", "updated_at"}

type fakeHasher struct{}

func (fakeHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db, fakeHasher{}), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(insertQuery).
		WithArgs("ann@example.com", "hashed:secret123", "Ann Lee", true, "user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(testID, now, now))

	u := models.NewUser("  Ann@Example.com", "secret123", "Ann Lee")
	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)

	assert.Equal(t, testID, got.ID)
	assert.Equal(t, "ann@example.com", got.Email)
	assert.Equal(t, "hashed:secret123", got.PasswordHash)
	assert.Empty(t, got.Password)
	assert.Equal(t, now, got.CreatedAt)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).
		WillReturnError(&pgconn.PgError{Code: "23505", Detail: "Key (email)=(ann@example.com) already exists."})

	_, err := repo.Create(context.Background(), models.NewUser("ann@example.com", "pw1234", "Ann"))

	require.ErrorIs(t, err, common.ErrDuplicateEmail)
	assert.Equal(t, "Key (email)=(ann@example.com) already exists.", err.Error())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), models.NewUser("a@b.c", "pw1234", "A"))
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByID_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(selectByIDQuery).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(testID, "ann@example.com", "Ann", true, "user,admin", now, now))

	got, err := repo.FindByID(context.Background(), testID)
	require.NoError(t, err)

	assert.Equal(t, "Ann", got.FullName)
	assert.True(t, got.IsActive)
	assert.Equal(t, []string{"user", "admin"}, got.Roles)
	assert.Empty(t, got.PasswordHash, "default projection excludes the hash")
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByIDQuery).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.FindByID(context.Background(), testID)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFindByID_MalformedIDSkipsQuery(t *testing.T) {
	repo, _ := newRepoWithMock(t)

	_, err := repo.FindByID(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFindByEmail_Projections(t *testing.T) {
	now := time.Now()

	t.Run("without password", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(selectByEmailQuery).
			WithArgs("ann@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(testID, "ann@example.com", "Ann", true, "user", now, now))

		got, err := repo.FindByEmail(context.Background(), " ANN@example.com ", false)
		require.NoError(t, err)
		assert.Empty(t, got.PasswordHash)
	})

	t.Run("with password", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(selectByEmailWithPasswordQuery).
			WithArgs("ann@example.com").
			WillReturnRows(sqlmock.NewRows(append(userColumns, "password_hash")).
				AddRow(testID, "ann@example.com", "Ann", false, "user", now, now, "$2a$10$digest"))

		got, err := repo.FindByEmail(context.Background(), "ann@example.com", true)
		require.NoError(t, err)
		assert.Equal(t, "$2a$10$digest", got.PasswordHash)
		assert.False(t, got.IsActive)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(selectByEmailQuery).
			WithArgs("ghost@example.com").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByEmail(context.Background(), "ghost@example.com", false)
		require.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(selectByEmailQuery).WillReturnError(errors.New("db err"))

		_, err := repo.FindByEmail(context.Background(), "a@b.c", false)
		if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
			t.Fatalf("expected wrapped db error, got %v", err)
		}
	})
}

func TestSave_KeepsHashWhenNoPasswordStaged(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(updateQuery).
		WithArgs(testID, "ann@example.com", "", "Ann B", false, "user,admin").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	u := &models.User{ID: testID, Email: "Ann@example.com", FullName: "Ann B", Roles: []string{"user", "admin"}}
	got, err := repo.Save(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, now, got.UpdatedAt)
}

func TestSave_HashesStagedPassword(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(updateQuery).
		WithArgs(testID, "ann@example.com", "hashed:n3w-pass", "Ann", true, "user").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

	u := &models.User{ID: testID, Email: "ann@example.com", Password: "n3w-pass", PasswordHash: "old", FullName: "Ann", IsActive: true}
	_, err := repo.Save(context.Background(), u)
	require.NoError(t, err)
	assert.Empty(t, u.Password)
}

func TestSave_Errors(t *testing.T) {
	t.Run("missing row", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(updateQuery).WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

		_, err := repo.Save(context.Background(), &models.User{ID: testID, Email: "a@b.c"})
		require.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("email taken", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(updateQuery).WillReturnError(&pgconn.PgError{Code: "23505", Detail: "taken"})

		_, err := repo.Save(context.Background(), &models.User{ID: testID, Email: "a@b.c"})
		require.ErrorIs(t, err, common.ErrDuplicateEmail)
	})

	t.Run("malformed id", func(t *testing.T) {
		repo, _ := newRepoWithMock(t)

		_, err := repo.Save(context.Background(), &models.User{ID: "42", Email: "a@b.c"})
		require.ErrorIs(t, err, common.ErrorNotFound)
	})
}
