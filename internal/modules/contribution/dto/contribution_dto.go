package dto

type CreateContributionRequest struct {
	Topic    string `json:"topic" binding:"required,max=100"`
	SubTopic string `json:"sub_topic" binding:"max=100"`
	Title    string `json:"title" binding:"required,max=255"`
}

// AssessmentRequest is written back by the insight scorer once it has
// analysed a contribution.
type AssessmentRequest struct {
	AIRelevance      *int   `json:"ai_relevance" binding:"omitempty,min=0,max=100"`
	HasMisconception *bool  `json:"has_misconception"`
	ValidationStatus string `json:"validation_status" binding:"omitempty,oneof=UNVALIDATED VERIFIED PARTIAL INCORRECT ERROR"`
}
