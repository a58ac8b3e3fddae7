package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VotesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clarix_votes_processed_total",
		Help: "Vote transitions by outcome (applied, noop, not_found, contention, error).",
	}, []string{"result"})

	VoteRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clarix_vote_transaction_retries_total",
		Help: "Vote transactions retried after a write conflict.",
	})

	ConfidenceRecomputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clarix_confidence_recomputed_total",
		Help: "Confidence records recomputed after a completion.",
	})

	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clarix_job_runs_total",
		Help: "Scheduled job runs by job and result.",
	}, []string{"job", "result"})

	JobUnitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clarix_job_unit_failures_total",
		Help: "Units (topic, user, day) that failed inside a job run.",
	}, []string{"job"})

	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clarix_job_duration_seconds",
		Help:    "Wall time of scheduled job runs.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"job"})

	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clarix_notifications_emitted_total",
		Help: "Notifications appended by type.",
	}, []string{"type"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clarix_http_request_duration_seconds",
		Help:    "HTTP request duration by route, method and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)

// RequestDurationMiddleware observes every request under its route pattern.
// Unmatched paths share one label.
func RequestDurationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
