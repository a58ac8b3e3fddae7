package dto

import "github.com/google/uuid"

type CastVoteRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down none"`
}

// VoteResponse carries the caller's direction and the contribution aggregates
// after the vote was applied.
type VoteResponse struct {
	ContributionID uuid.UUID `json:"contribution_id"`
	Direction      string    `json:"direction"`
	WeightedScore  float64   `json:"weighted_score"`
	VoteCount      int       `json:"vote_count"`
	Changed        bool      `json:"changed"`
}
