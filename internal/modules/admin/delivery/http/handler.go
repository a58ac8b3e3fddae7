package handler

import (
	"context"
	"net/http"

	"github.com/dev-lov-oper/Clarix-AI/internal/modules/admin/dto"
	adminService "github.com/dev-lov-oper/Clarix-AI/internal/modules/admin/service"
	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"github.com/dev-lov-oper/Clarix-AI/pkg/response"
	"github.com/dev-lov-oper/Clarix-AI/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	adminService adminService.AdminService
}

func NewAdminHandler(adminService adminService.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) ListJobs(c *gin.Context) {
	response.ResponseData(c, h.adminService.ListJobs())
}

func (h *AdminHandler) RunJob(c *gin.Context) {
	// a dropped connection must not abort a batch halfway through
	ctx := context.WithoutCancel(c.Request.Context())

	res, err := h.adminService.RunJob(ctx, c.Param("name"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, res)
}

func (h *AdminHandler) GrantRole(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.New(http.StatusBadRequest, "invalid user id", apperror.ErrInvalidInput))
		return
	}

	var input dto.GrantRoleRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.adminService.GrantRole(c.Request.Context(), userID, input); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "role granted"})
}
