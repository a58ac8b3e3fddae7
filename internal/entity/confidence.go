package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConfidenceRecord is the mastery score of one user in one topic.
type ConfidenceRecord struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	TopicID     string    `gorm:"size:100;primaryKey" json:"topic_id"`
	TopicName   string    `gorm:"size:100;not null" json:"topic_name"`
	Score       int       `gorm:"not null;default:0" json:"score"`
	SolvedCount int       `gorm:"not null;default:0" json:"solved_count"`
	ErrorRate   float64   `gorm:"not null;default:0" json:"error_rate"`
	DecayFactor float64   `gorm:"not null;default:1" json:"decay_factor"`
	LastUpdated time.Time `gorm:"not null" json:"last_updated"`
}
