package handler

import (
	"net/http"

	"github.com/dev-lov-oper/Clarix-AI/internal/modules/vote/dto"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/vote/service"
	"github.com/dev-lov-oper/Clarix-AI/pkg/response"
	"github.com/dev-lov-oper/Clarix-AI/pkg/scoremath"
	"github.com/dev-lov-oper/Clarix-AI/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VoteHandler struct {
	service service.VoteService
}

func NewVoteHandler(service service.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

func (h *VoteHandler) CastVote(c *gin.Context) {
	contributionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contribution id"})
		return
	}

	var req dto.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	voterID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.CastVote(c.Request.Context(), contributionID, voterID, scoremath.ParseDirection(req.Direction))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, resp)
}

func (h *VoteHandler) GetVote(c *gin.Context) {
	contributionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contribution id"})
		return
	}

	voterID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.GetVote(c.Request.Context(), contributionID, voterID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, resp)
}
