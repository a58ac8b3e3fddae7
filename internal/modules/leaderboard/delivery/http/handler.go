package handler

import (
	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	leaderboardService "github.com/dev-lov-oper/Clarix-AI/internal/modules/leaderboard/service"
	"github.com/dev-lov-oper/Clarix-AI/pkg/response"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	service leaderboardService.LeaderboardService
}

func NewLeaderboardHandler(service leaderboardService.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	leaderboard, err := h.service.GetLeaderboard(c.Request.Context(), entity.TopicID(c.Param("topic")))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, leaderboard)
}
