package handler

import (
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/confidence/service"
	"github.com/dev-lov-oper/Clarix-AI/pkg/response"
	"github.com/gin-gonic/gin"
)

type ConfidenceHandler struct {
	service service.ConfidenceService
}

func NewConfidenceHandler(service service.ConfidenceService) *ConfidenceHandler {
	return &ConfidenceHandler{service: service}
}

func (h *ConfidenceHandler) List(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	records, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, records)
}

// Get accepts either the topic id or its display name.
func (h *ConfidenceHandler) Get(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	record, err := h.service.Get(c.Request.Context(), userID, c.Param("topic"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, record)
}
