package dbx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantDetail string
		wantOK     bool
	}{
		{
			name:       "unique violation",
			err:        &pgconn.PgError{Code: "23505", Detail: "Key (email)=(a@b.c) already exists."},
			wantDetail: "Key (email)=(a@b.c) already exists.",
			wantOK:     true,
		},
		{
			name:       "wrapped unique violation",
			err:        fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", Detail: "dup"}),
			wantDetail: "dup",
			wantOK:     true,
		},
		{
			name: "other pg error",
			err:  &pgconn.PgError{Code: "23502", Detail: "null value"},
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
		},
		{
			name: "nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail, ok := UniqueViolation(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantDetail, detail)
		})
	}
}
