package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const NotificationWeaknessAlert = "weakness_alert"

type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_user_read,priority:1" json:"user_id"` // recipient
	Type        string    `gorm:"size:50;not null" json:"type"`
	Message     string    `gorm:"type:text" json:"message"`
	TargetTopic *string   `gorm:"size:100" json:"target_topic,omitempty"`
	IsRead      bool      `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2" json:"is_read"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
