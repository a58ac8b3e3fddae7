package entity

import (
	"regexp"
	"strings"
	"time"
)

const DefaultTopicName = "General"

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

type Topic struct {
	ID        string    `gorm:"size:100;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TopicID derives the stable key of a topic from its display name,
// e.g. "Dynamic Programming" -> "dynamic_programming".
func TopicID(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTopicName
	}
	return nonSlugChars.ReplaceAllString(strings.ToLower(name), "_")
}
