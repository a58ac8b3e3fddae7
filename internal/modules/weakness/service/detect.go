package service

import (
	"strings"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
)

const (
	// ScanWindow is how many recent history entries are inspected per user.
	ScanWindow = 20
	// AlertThreshold: more failures of one kind than this raise an alert.
	AlertThreshold = 3
)

var edgeCaseMarkers = []string{"0", "-1", "null", "[]", "undefined"}

// Findings is the failure pattern of one user's recent history.
type Findings struct {
	Timeouts        int
	TopTimeoutTopic string
	EdgeCases       int
}

// Detect counts timeout and edge-case failures in entries ordered most
// recent first. Completed entries are ignored. On a tie the topic that
// failed most recently wins.
func Detect(entries []entity.HistoryEntry) Findings {
	var f Findings
	timeoutsByTopic := make(map[string]int)
	var order []string

	for i := range entries {
		e := &entries[i]
		if e.IsCompleted() {
			continue
		}

		if isTimeout(e) {
			f.Timeouts++
			topic := e.Topic
			if topic == "" {
				topic = entity.DefaultTopicName
			}
			if timeoutsByTopic[topic] == 0 {
				order = append(order, topic)
			}
			timeoutsByTopic[topic]++
		}

		if isEdgeCase(e) {
			f.EdgeCases++
		}
	}

	best := 0
	for _, topic := range order {
		if timeoutsByTopic[topic] > best {
			best = timeoutsByTopic[topic]
			f.TopTimeoutTopic = topic
		}
	}
	if f.TopTimeoutTopic == "" {
		f.TopTimeoutTopic = entity.DefaultTopicName
	}
	return f
}

func isTimeout(e *entity.HistoryEntry) bool {
	return e.Status == entity.StatusTimeLimitExceeded || strings.Contains(e.FailureReason, "Time Limit")
}

func isEdgeCase(e *entity.HistoryEntry) bool {
	if len(e.TestInput) == 0 {
		return false
	}
	input := string(e.TestInput)
	for _, marker := range edgeCaseMarkers {
		if strings.Contains(input, marker) {
			return true
		}
	}
	return false
}
