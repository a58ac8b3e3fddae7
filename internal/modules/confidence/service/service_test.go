package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/confidence/repository"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/confidence/service"
	"github.com/dev-lov-oper/Clarix-AI/internal/testutil"
	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var now = time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)

// seedHistory stores one completed entry per attempt count; the first
// element is the most recent.
func seedHistory(t *testing.T, db *gorm.DB, userID uuid.UUID, topic string, attempts ...int) {
	t.Helper()
	for i, a := range attempts {
		at := now.Add(-time.Duration(i+1) * time.Hour)
		require.NoError(t, db.Create(&entity.HistoryEntry{
			UserID:      userID,
			ProblemID:   fmt.Sprintf("%s-%d", topic, i),
			Topic:       topic,
			Status:      entity.StatusCompleted,
			Attempts:    a,
			CompletedAt: &at,
			CreatedAt:   at,
		}).Error)
	}
}

func TestOnCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		attempts    []int
		priorAge    time.Duration // 0 means no prior record
		wantScore   int
		wantDecay   float64
		wantErrRate float64
	}{
		{
			name:        "decay and error penalty compound",
			attempts:    []int{4, 5, 1, 1, 6},
			priorAge:    10 * 24 * time.Hour,
			wantScore:   40,
			wantDecay:   0.95,
			wantErrRate: 0.6,
		},
		{
			name:        "first record has no decay",
			attempts:    []int{1, 2, 3},
			wantScore:   30,
			wantDecay:   1,
			wantErrRate: 0,
		},
		{
			name:        "capped at 100",
			attempts:    []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
			priorAge:    2 * 24 * time.Hour,
			wantScore:   100,
			wantDecay:   1,
			wantErrRate: 0,
		},
		{
			name:        "decay floor after a year",
			attempts:    []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
			priorAge:    365 * 24 * time.Hour,
			wantScore:   50,
			wantDecay:   0.5,
			wantErrRate: 0,
		},
		{
			name:        "only the five most recent attempts count",
			attempts:    []int{1, 1, 1, 1, 1, 9, 9, 9, 9, 9},
			wantScore:   100,
			wantDecay:   1,
			wantErrRate: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db := testutil.NewDB(t)
			user := testutil.CreateUser(t, db, 0, entity.ExpertiseBeginner)
			seedHistory(t, db, user.ID, "Graphs", tt.attempts...)

			if tt.priorAge > 0 {
				require.NoError(t, db.Create(&entity.ConfidenceRecord{
					UserID:      user.ID,
					TopicID:     "graphs",
					TopicName:   "Graphs",
					Score:       77,
					DecayFactor: 1,
					LastUpdated: now.Add(-tt.priorAge),
				}).Error)
			}

			svc := service.NewConfidenceService(repository.NewConfidenceRepository(db), zap.NewNop(), testutil.Clock(now))
			rec, err := svc.OnCompletion(context.Background(), user.ID, "Graphs", tt.attempts[0])
			require.NoError(t, err)

			assert.Equal(t, tt.wantScore, rec.Score)
			assert.Equal(t, tt.wantDecay, rec.DecayFactor)
			assert.Equal(t, tt.wantErrRate, rec.ErrorRate)
			assert.Equal(t, len(tt.attempts), rec.SolvedCount)

			stored, err := svc.Get(context.Background(), user.ID, "Graphs")
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, stored.Score)
			assert.True(t, now.Equal(stored.LastUpdated))

			var rows int64
			require.NoError(t, db.Model(&entity.ConfidenceRecord{}).Where("user_id = ?", user.ID).Count(&rows).Error)
			assert.Equal(t, int64(1), rows)
		})
	}
}

func TestOnCompletionEmptyTopicFallsBackToGeneral(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, 0, entity.ExpertiseBeginner)
	seedHistory(t, db, user.ID, entity.DefaultTopicName, 2)

	svc := service.NewConfidenceService(repository.NewConfidenceRepository(db), zap.NewNop(), testutil.Clock(now))
	rec, err := svc.OnCompletion(context.Background(), user.ID, "  ", 2)
	require.NoError(t, err)
	assert.Equal(t, "general", rec.TopicID)
	assert.Equal(t, 10, rec.Score)

	list, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetMissingRecord(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	svc := service.NewConfidenceService(repository.NewConfidenceRepository(db), zap.NewNop(), testutil.Clock(now))

	_, err := svc.Get(context.Background(), uuid.New(), "Trees")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, service.DaysBetween(base, base))
	assert.Equal(t, 0, service.DaysBetween(base, base.Add(-time.Hour)))
	assert.Equal(t, 1, service.DaysBetween(base, base.Add(time.Minute)))
	assert.Equal(t, 8, service.DaysBetween(base, base.Add(7*24*time.Hour+time.Second)))
}
