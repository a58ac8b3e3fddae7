package dto

import (
	"time"

	"github.com/google/uuid"
)

// LeaderboardEntry is one ranked author. Position is 1-based.
type LeaderboardEntry struct {
	Position int       `json:"position"`
	UserID   uuid.UUID `json:"user_id"`
	Score    float64   `json:"score"`
}

type LeaderboardResponse struct {
	TopicID     string             `json:"topic_id"`
	Leaders     []LeaderboardEntry `json:"leaders"`
	PeriodStart time.Time          `json:"period_start"`
	UpdatedAt   time.Time          `json:"updated_at"`
}
