package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ValidationUnvalidated = "UNVALIDATED"
	ValidationVerified    = "VERIFIED"
	ValidationPartial     = "PARTIAL"
	ValidationIncorrect   = "INCORRECT"
	ValidationError       = "ERROR"
)

// Contribution is a community post or solution under one (topic, sub-topic).
// WeightedScore, VoteCount and Version are only written by the vote ledger.
type Contribution struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID          string     `gorm:"size:100;not null;index:idx_contributions_topic_created,priority:1" json:"topic_id"`
	SubTopic         string     `gorm:"size:100" json:"sub_topic"`
	AuthorID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Author           *User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Title            string     `gorm:"size:255" json:"title"`
	AIRelevance      *int       `json:"ai_relevance"`
	HasMisconception bool       `gorm:"not null;default:false" json:"has_misconception"`
	ValidationStatus string     `gorm:"size:20;not null;default:'UNVALIDATED'" json:"validation_status"`
	WeightedScore    float64    `gorm:"not null;default:0" json:"weighted_score"`
	VoteCount        int        `gorm:"not null;default:0" json:"vote_count"`
	Version          int        `gorm:"not null;default:0" json:"-"`
	AnalyzedAt       *time.Time `gorm:"index" json:"analyzed_at,omitempty"`
	CreatedAt        time.Time  `gorm:"index:idx_contributions_topic_created,priority:2" json:"created_at"`
}

func (c *Contribution) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// Relevance is the insight relevance, 0 until the contribution has been scored.
func (c *Contribution) Relevance() int {
	if c.AIRelevance == nil {
		return 0
	}
	return *c.AIRelevance
}

// Vote is the single active vote of one voter on one contribution.
// A retracted vote has no row.
type Vote struct {
	ContributionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"contribution_id"`
	VoterID        uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"voter_id"`
	Direction      string    `gorm:"size:4;not null" json:"direction"` // 'up', 'down'
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (v *Vote) TableName() string {
	return "votes"
}
