// Package scheduler runs the named batch jobs on cron schedules and on demand.
// A Redis lock per job name keeps replicas from running the same job twice.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"github.com/dev-lov-oper/Clarix-AI/pkg/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const lockPrefix = "job_lock:"

// releaseScript deletes the lock only while it still holds our token, so a
// run that outlived its TTL cannot free a lock taken by another replica.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Job is one named unit of scheduled work. An empty Schedule registers the
// job as on-demand only.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	redis   *redis.Client
	lockTTL time.Duration
	log     *zap.Logger

	mu   sync.RWMutex
	jobs map[string]Job
}

func New(redisClient *redis.Client, lockTTL time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		redis:   redisClient,
		lockTTL: lockTTL,
		log:     log,
		jobs:    make(map[string]Job),
	}
}

func LockKey(name string) string {
	return lockPrefix + name
}

// Register adds a job and, when it has a schedule, its cron entry.
func (s *Scheduler) Register(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %q already registered", job.Name)
	}

	if job.Schedule != "" {
		_, err := s.cron.AddFunc(job.Schedule, func() {
			if err := s.run(context.Background(), job); err != nil && !errors.Is(err, apperror.ErrJobAlreadyRunning) {
				s.log.Error("scheduled job failed", zap.String("job", job.Name), zap.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("schedule job %q: %w", job.Name, err)
		}
		s.log.Info("job scheduled", zap.String("job", job.Name), zap.String("cron", job.Schedule))
	} else {
		s.log.Info("job registered on demand", zap.String("job", job.Name))
	}

	s.jobs[job.Name] = job
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.JobNames())))
}

// Stop halts the cron and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out with jobs still running")
	}
	s.log.Info("scheduler stopped")
}

// RunJobByName runs a registered job now, under the same lock as the cron.
func (s *Scheduler) RunJobByName(ctx context.Context, name string) error {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return apperror.New(404, fmt.Sprintf("job %q not found", name), apperror.ErrNotFound)
	}

	s.log.Info("running job on demand", zap.String("job", name))
	return s.run(ctx, job)
}

func (s *Scheduler) JobNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	release, err := s.acquire(ctx, job.Name)
	if err != nil {
		if errors.Is(err, apperror.ErrJobAlreadyRunning) {
			metrics.JobRuns.WithLabelValues(job.Name, "locked").Inc()
			s.log.Info("job skipped, lock held elsewhere", zap.String("job", job.Name))
		}
		return err
	}
	defer release()

	start := time.Now()
	s.log.Info("job started", zap.String("job", job.Name))

	err = job.Run(ctx)

	elapsed := time.Since(start)
	metrics.JobDuration.WithLabelValues(job.Name).Observe(elapsed.Seconds())
	if err != nil {
		metrics.JobRuns.WithLabelValues(job.Name, "error").Inc()
		return fmt.Errorf("job %s: %w", job.Name, err)
	}

	metrics.JobRuns.WithLabelValues(job.Name, "ok").Inc()
	s.log.Info("job finished", zap.String("job", job.Name), zap.Duration("elapsed", elapsed))
	return nil
}

// acquire takes the job lock. Without Redis there is nothing to coordinate
// with and the lock always succeeds.
func (s *Scheduler) acquire(ctx context.Context, name string) (func(), error) {
	if s.redis == nil {
		return func() {}, nil
	}

	key := LockKey(name)
	token := uuid.NewString()
	ok, err := s.redis.SetNX(ctx, key, token, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, apperror.ErrJobAlreadyRunning
	}

	return func() {
		// the caller's ctx may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, s.redis, []string{key}, token).Err(); err != nil {
			s.log.Warn("failed to release job lock", zap.String("job", name), zap.Error(err))
		}
	}, nil
}
