package entity

import (
	"time"

	"github.com/dev-lov-oper/Clarix-AI/pkg/scoremath"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin       = "admin"
	RoleTopicExpert = "Topic Expert"
)

const (
	ExpertiseBeginner     = scoremath.TierBeginner
	ExpertiseIntermediate = scoremath.TierIntermediate
	ExpertiseExpert       = scoremath.TierExpert
)

type User struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string            `gorm:"size:100" json:"username"`
	Reputation   int               `gorm:"not null;default:0" json:"reputation"`
	Expertise    string            `gorm:"size:20;not null;default:'Beginner'" json:"expertise"`
	LastActiveAt *time.Time        `gorm:"index" json:"last_active_at,omitempty"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
	Roles        []UserRole        `gorm:"constraint:OnDelete:CASCADE" json:"roles,omitempty"`
	ExpertTopics []UserExpertTopic `gorm:"constraint:OnDelete:CASCADE" json:"expert_topics,omitempty"`
	Badges       []UserBadge       `gorm:"constraint:OnDelete:CASCADE" json:"badges,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasRole reports whether the preloaded role set contains role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

// UserRole is one member of a user's role set. The composite key makes
// inserting an existing role a no-op under ON CONFLICT DO NOTHING.
type UserRole struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Role      string    `gorm:"size:50;primaryKey" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserExpertTopic records a topic the user was promoted to expert in.
type UserExpertTopic struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	TopicID   string    `gorm:"size:100;primaryKey" json:"topic_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type UserBadge struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	BadgeID   string    `gorm:"size:50;primaryKey" json:"badge_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
