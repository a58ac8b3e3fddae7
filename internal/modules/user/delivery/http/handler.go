package handler

import (
	"net/http"

	"github.com/dev-lov-oper/Clarix-AI/internal/modules/user/dto"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/user/service"
	"github.com/dev-lov-oper/Clarix-AI/pkg/response"
	"github.com/dev-lov-oper/Clarix-AI/pkg/validator"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Provision(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.ProvisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
			return
		}
	}

	user, err := h.service.Provision(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, user)
}

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseData(c, user)
}
