package handler

import (
	"net/http"
	"strconv"

	"github.com/dev-lov-oper/Clarix-AI/internal/modules/progress/dto"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/progress/service"
	"github.com/dev-lov-oper/Clarix-AI/pkg/response"
	"github.com/dev-lov-oper/Clarix-AI/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	service service.ProgressService
}

func NewProgressHandler(service service.ProgressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

func (h *ProgressHandler) RecordAttempt(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.RecordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.RecordAttempt(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, resp)
}

func (h *ProgressHandler) History(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	entries, err := h.service.History(c.Request.Context(), userID, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, entries)
}

func (h *ProgressHandler) MyStats(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, stats)
}
