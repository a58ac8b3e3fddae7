package handler

import (
	statService "github.com/dev-lov-oper/Clarix-AI/internal/modules/stat/service"
	"github.com/dev-lov-oper/Clarix-AI/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatHandler struct {
	statService statService.StatService
}

func NewStatHandler(statService statService.StatService) *StatHandler {
	return &StatHandler{statService: statService}
}

func (h *StatHandler) GetDailyStats(c *gin.Context) {
	stats, err := h.statService.ListDaily(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, stats)
}
