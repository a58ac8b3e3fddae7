package handler

import (
	"net/http"

	"github.com/dev-lov-oper/Clarix-AI/internal/modules/topic/dto"
	topic "github.com/dev-lov-oper/Clarix-AI/internal/modules/topic/service"
	"github.com/dev-lov-oper/Clarix-AI/pkg/response"
	"github.com/dev-lov-oper/Clarix-AI/pkg/validator"
	"github.com/gin-gonic/gin"
)

type TopicHandler struct {
	service topic.TopicService
}

func NewTopicHandler(service topic.TopicService) *TopicHandler {
	return &TopicHandler{service: service}
}

func (h *TopicHandler) CreateTopic(c *gin.Context) {
	var req dto.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	created, err := h.service.CreateTopic(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (h *TopicHandler) GetAllTopics(c *gin.Context) {
	var filter dto.TopicFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	topics, err := h.service.GetAllTopics(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, topics)
}

func (h *TopicHandler) GetTopic(c *gin.Context) {
	t, err := h.service.GetTopic(c.Request.Context(), c.Param("topic"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, t)
}
