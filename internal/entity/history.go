package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusCompleted         = "Completed"
	StatusAccepted          = "Accepted"
	StatusTimeLimitExceeded = "Time Limit Exceeded"
	StatusWrongAnswer       = "Wrong Answer"
)

// IsCompletedStatus reports whether a history status counts as solved.
func IsCompletedStatus(status string) bool {
	return status == StatusCompleted || status == StatusAccepted
}

// HistoryEntry is a user's latest state on one problem. CreatedAt is moved
// forward on every recorded attempt and is the recency ordering key.
type HistoryEntry struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_history_user_problem,priority:1;index:idx_history_user_topic,priority:1" json:"user_id"`
	ProblemID     string         `gorm:"size:100;not null;uniqueIndex:idx_history_user_problem,priority:2" json:"problem_id"`
	Topic         string         `gorm:"size:100;not null;index:idx_history_user_topic,priority:2" json:"topic"`
	Status        string         `gorm:"size:50;not null" json:"status"`
	Attempts      int            `gorm:"not null;default:1" json:"attempts"`
	FailureReason string         `gorm:"type:text" json:"failure_reason,omitempty"`
	TestInput     datatypes.JSON `json:"test_input,omitempty"`
	CompletedAt   *time.Time     `gorm:"index" json:"completed_at,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
}

func (h *HistoryEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID, err = uuid.NewV7()
	}
	return
}

func (h *HistoryEntry) IsCompleted() bool {
	return IsCompletedStatus(h.Status)
}
