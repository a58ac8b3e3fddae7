// Package batch fans a scheduled job out over independent units (topics,
// users, days) and collects a per-run report. A failing or panicking unit
// never stops the others.
package batch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"github.com/dev-lov-oper/Clarix-AI/pkg/metrics"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Outcome is what a unit reports when it did not fail.
type Outcome int

const (
	Done Outcome = iota
	Skipped
)

type UnitFailure struct {
	Unit  string `json:"unit"`
	Error string `json:"error"`
}

type Report struct {
	Job       string        `json:"job"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Units     int           `json:"units"`
	Done      int           `json:"done"`
	Skipped   int           `json:"skipped"`
	Failed    []UnitFailure `json:"failed,omitempty"`
}

// Err summarises the failed units, nil when every unit succeeded.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d units in %s", apperror.ErrBatchUnitFailure, len(r.Failed), r.Units, r.Job)
}

// Run calls fn for every unit on at most concurrency goroutines.
func Run[T any](
	ctx context.Context,
	log *zap.Logger,
	job string,
	units []T,
	concurrency int,
	name func(T) string,
	fn func(context.Context, T) (Outcome, error),
) *Report {
	if concurrency < 1 {
		concurrency = 1
	}
	report := &Report{Job: job, StartedAt: time.Now(), Units: len(units)}

	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(concurrency)
	for _, unit := range units {
		unit := unit
		p.Go(func() {
			var (
				outcome Outcome
				err     error
				pc      panics.Catcher
			)
			pc.Try(func() { outcome, err = fn(ctx, unit) })
			if r := pc.Recovered(); r != nil {
				err = r.AsError()
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				err = fmt.Errorf("%w: %s %s: %v", apperror.ErrBatchUnitFailure, job, name(unit), err)
				report.Failed = append(report.Failed, UnitFailure{Unit: name(unit), Error: err.Error()})
				metrics.JobUnitFailures.WithLabelValues(job).Inc()
				log.Error("batch unit failed", zap.String("job", job), zap.String("unit", name(unit)), zap.Error(err))
				return
			}
			if outcome == Skipped {
				report.Skipped++
			} else {
				report.Done++
			}
		})
	}
	p.Wait()

	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Unit < report.Failed[j].Unit })
	report.Duration = time.Since(report.StartedAt)
	return report
}
