package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserStats is the per-user progress summary maintained on problem completion.
type UserStats struct {
	UserID         uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"user_id"`
	User           *User                       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TopicsLearned  int                         `gorm:"not null;default:0" json:"topics_learned"`
	TotalSolved    int                         `gorm:"not null;default:0" json:"total_solved"`
	TotalAttempted int                         `gorm:"not null;default:0" json:"total_attempted"`
	AccuracyRate   float64                     `gorm:"not null;default:0" json:"accuracy_rate"`
	WeakAreas      datatypes.JSONSlice[string] `json:"weak_areas"`
	LastUpdated    time.Time                   `json:"last_updated"`
}

// LeaderEntry is one ranked author inside a snapshot.
type LeaderEntry struct {
	UserID uuid.UUID `json:"user_id"`
	Score  float64   `json:"score"`
}

// LeaderboardSnapshot holds the top authors of a topic for the last period.
// A new run replaces the row wholesale.
type LeaderboardSnapshot struct {
	TopicID     string                           `gorm:"size:100;primaryKey" json:"topic_id"`
	Leaders     datatypes.JSONSlice[LeaderEntry] `json:"leaders"`
	PeriodStart time.Time                        `json:"period_start"`
	UpdatedAt   time.Time                        `json:"updated_at"`
}

// DailyStat is the platform rollup of one calendar day, keyed YYYY-MM-DD.
type DailyStat struct {
	Date            string    `gorm:"size:10;primaryKey" json:"date"`
	ActiveUsers     int64     `gorm:"not null;default:0" json:"active_users"`
	TotalSolves     int64     `gorm:"not null;default:0" json:"total_solves"`
	AIAccuracy      float64   `gorm:"column:ai_accuracy;not null;default:0" json:"ai_accuracy"`
	MisleadingPosts int64     `gorm:"not null;default:0" json:"misleading_posts"`
	AggregatedAt    time.Time `json:"aggregated_at"`
}
