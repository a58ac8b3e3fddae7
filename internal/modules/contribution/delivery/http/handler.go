package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dev-lov-oper/Clarix-AI/internal/modules/contribution/dto"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/contribution/service"
	"github.com/dev-lov-oper/Clarix-AI/pkg/ratelimiter"
	"github.com/dev-lov-oper/Clarix-AI/pkg/response"
	"github.com/dev-lov-oper/Clarix-AI/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContributionHandler struct {
	service service.ContributionService
}

func NewContributionHandler(service service.ContributionService) *ContributionHandler {
	return &ContributionHandler{service: service}
}

func (h *ContributionHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	contribution, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		var rateLimitErr *ratelimiter.RateLimitError
		if errors.As(err, &rateLimitErr) {
			c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": contribution})
}

func (h *ContributionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contribution id"})
		return
	}

	contribution, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, contribution)
}

func (h *ContributionHandler) ApplyAssessment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contribution id"})
		return
	}

	var req dto.AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	contribution, err := h.service.ApplyAssessment(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, contribution)
}
