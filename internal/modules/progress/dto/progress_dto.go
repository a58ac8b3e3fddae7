package dto

import (
	"encoding/json"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
)

type RecordAttemptRequest struct {
	ProblemID     string          `json:"problem_id" binding:"required,max=100"`
	Topic         string          `json:"topic" binding:"max=100"`
	Status        string          `json:"status" binding:"required,max=50"`
	Attempts      int             `json:"attempts" binding:"required,min=1"`
	FailureReason string          `json:"failure_reason"`
	TestInput     json.RawMessage `json:"test_input"`
}

type RecordAttemptResponse struct {
	Entry *entity.HistoryEntry `json:"entry"`
	// Completed is true only for the attempt that first solved the problem.
	Completed  bool                     `json:"completed"`
	Stats      *entity.UserStats        `json:"stats,omitempty"`
	Confidence *entity.ConfidenceRecord `json:"confidence,omitempty"`
}
