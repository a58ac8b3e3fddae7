package batch_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"github.com/dev-lov-oper/Clarix-AI/pkg/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunIsolatesFailures(t *testing.T) {
	t.Parallel()

	units := []int{1, 2, 3, 4, 5, 6}
	var calls atomic.Int32

	report := batch.Run(context.Background(), zap.NewNop(), "test", units, 3,
		func(u int) string { return fmt.Sprintf("u%d", u) },
		func(_ context.Context, u int) (batch.Outcome, error) {
			calls.Add(1)
			switch u {
			case 2:
				return batch.Done, errors.New("store down")
			case 4:
				panic("boom")
			case 5:
				return batch.Skipped, nil
			}
			return batch.Done, nil
		},
	)

	assert.Equal(t, int32(6), calls.Load())
	assert.Equal(t, 6, report.Units)
	assert.Equal(t, 3, report.Done)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Failed, 2)
	assert.Equal(t, "u2", report.Failed[0].Unit)
	assert.Contains(t, report.Failed[0].Error, "store down")
	assert.Equal(t, "u4", report.Failed[1].Unit)
	assert.Contains(t, report.Failed[1].Error, "boom")
	assert.ErrorIs(t, report.Err(), apperror.ErrBatchUnitFailure)
}

func TestRunEmpty(t *testing.T) {
	t.Parallel()

	report := batch.Run(context.Background(), zap.NewNop(), "noop", []string(nil), 0,
		func(s string) string { return s },
		func(context.Context, string) (batch.Outcome, error) { return batch.Done, nil },
	)
	assert.Zero(t, report.Units)
	assert.NoError(t, report.Err())
}
