package dto

type CreateTopicRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

type TopicFilter struct {
	Search string `form:"search"`
}
