package dto

import "time"

type GrantRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin"`
}

type JobListResponse struct {
	Jobs []string `json:"jobs"`
}

type JobRunResponse struct {
	Job      string        `json:"job"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration_ns"`
}
