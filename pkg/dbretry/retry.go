package dbretry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict signals that an optimistic write lost against a concurrent writer.
// Repositories return it when a versioned UPDATE touches zero rows.
var ErrConflict = errors.New("concurrent write conflict")

// ErrRetriesExhausted is wrapped around the last conflict once the budget is spent.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Policy is the retry budget for one operation.
type Policy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultPolicy retries a conflicting transaction five times over at most ~10s.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      5,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxElapsedTime:  10 * time.Second,
	}
}

// IsConflict reports whether err is a write conflict worth retrying:
// an optimistic version miss, a serialization failure, a deadlock, or a unique
// violation raced by a concurrent insert of the same key.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConflict) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", // serialization_failure
			"40P01", // deadlock_detected
			"23505", // unique_violation
			"55P03": // lock_not_available
			return true
		}
	}
	return false
}

// Operation runs op until it succeeds, fails with a non-conflict error, or the
// policy is exhausted. Exhaustion returns an error wrapping ErrRetriesExhausted
// and the last conflict.
func Operation[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	var result T
	var lastErr error

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(policy.InitialInterval),
		backoff.WithMaxInterval(policy.MaxInterval),
		backoff.WithMaxElapsedTime(policy.MaxElapsedTime),
	), policy.MaxRetries)

	err := backoff.Retry(func() error {
		var err error
		result, err = op(ctx)
		if err != nil {
			if !IsConflict(err) {
				return backoff.Permanent(err)
			}
			lastErr = err
			return err
		}
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		if lastErr != nil && IsConflict(err) {
			return result, fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
		}
		return result, err
	}

	return result, nil
}
