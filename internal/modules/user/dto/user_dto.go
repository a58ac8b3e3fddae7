package dto

type ProvisionRequest struct {
	Username string `json:"username" binding:"max=100"`
}
