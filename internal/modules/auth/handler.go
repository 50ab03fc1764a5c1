package auth

import (
	"errors"
	"net/http"

	"equiprent/internal/middleware"
	"equiprent/internal/pkg/response"
	"equiprent/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts login under the admin prefix, outside the JWT group.
func (h *Handler) RegisterPublicRoutes(admin *gin.RouterGroup) {
	admin.POST("/auth/login", h.Login)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/auth/me", h.GetMe)
}

// Login
// @Summary		Admin login
// @Description	Exchanges admin email and password for a bearer token.
// @Tags		Admin auth
// @Param		request	body	LoginRequest	true	"Credentials"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}	"AUTH_FAILED"
// @Router		/admin/auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.Details(err))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "AUTH_FAILED", "Email or password is incorrect")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, res)
}

func (h *Handler) GetMe(c *gin.Context) {
	admin, err := h.service.GetCurrentAdmin(c.Request.Context(), c.GetInt64(middleware.CtxAdminID))
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrAdminNotFound):
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Admin account is not available")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"admin": admin})
}
