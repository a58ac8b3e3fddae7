package dbretry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/pkg/dbretry"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fastPolicy(retries uint64) dbretry.Policy {
	return dbretry.Policy{
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxElapsedTime:  time.Second,
	}
}

func TestIsConflict(t *testing.T) {
	t.Parallel()

	assert.False(t, dbretry.IsConflict(nil))
	assert.True(t, dbretry.IsConflict(dbretry.ErrConflict))
	assert.True(t, dbretry.IsConflict(fmt.Errorf("update: %w", dbretry.ErrConflict)))
	assert.True(t, dbretry.IsConflict(&pgconn.PgError{Code: "40001"}))
	assert.True(t, dbretry.IsConflict(&pgconn.PgError{Code: "23505"}))
	assert.False(t, dbretry.IsConflict(&pgconn.PgError{Code: "42P01"}))
	assert.False(t, dbretry.IsConflict(errBoom))
}

func TestOperation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		failures   int
		failWith   error
		retries    uint64
		wantCalls  int
		wantErr    error
		wantResult string
	}{
		{name: "succeeds first try", failures: 0, retries: 3, wantCalls: 1, wantResult: "ok"},
		{name: "succeeds after conflicts", failures: 2, failWith: dbretry.ErrConflict, retries: 3, wantCalls: 3, wantResult: "ok"},
		{name: "exhausts budget", failures: 10, failWith: dbretry.ErrConflict, retries: 3, wantCalls: 4, wantErr: dbretry.ErrRetriesExhausted},
		{name: "non conflict stops immediately", failures: 10, failWith: errBoom, retries: 3, wantCalls: 1, wantErr: errBoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			res, err := dbretry.Operation(context.Background(), fastPolicy(tt.retries), func(context.Context) (string, error) {
				calls++
				if calls <= tt.failures {
					return "", tt.failWith
				}
				return "ok", nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantResult, res)
		})
	}
}

func TestOperationExhaustedKeepsLastConflict(t *testing.T) {
	t.Parallel()

	_, err := dbretry.Operation(context.Background(), fastPolicy(1), func(context.Context) (int, error) {
		return 0, dbretry.ErrConflict
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, dbretry.ErrRetriesExhausted)
	assert.ErrorIs(t, err, dbretry.ErrConflict)
}
