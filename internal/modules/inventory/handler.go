package inventory

import (
	"errors"
	"net/http"
	"strconv"

	"equiprent/internal/pkg/response"
	"equiprent/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the back-office inventory routes on an admin-protected group.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	equipment := admin.Group("/equipment")
	{
		equipment.GET("", h.ListEquipment)
		equipment.POST("", h.CreateEquipment)
		equipment.GET("/:id", h.GetEquipment)
		equipment.PUT("/:id", h.UpdateEquipment)
		equipment.DELETE("/:id", h.DeleteEquipment)
		equipment.PUT("/:id/visibility", h.SetVisibility)
	}

	categories := admin.Group("/categories")
	{
		categories.POST("", h.CreateCategory)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}
}

// ListEquipment returns all equipment, hidden items included.
// @Summary		Admin equipment list
// @Tags		Admin
// @Security	BearerAuth
// @Param		category_id	query	int		false	"Category filter"
// @Param		status		query	string	false	"available | unavailable | maintenance | broken"
// @Param		q			query	string	false	"Search in name and description"
// @Router		/admin/equipment [GET]
func (h *Handler) ListEquipment(c *gin.Context) {
	var q ListEquipmentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", validator.Details(err))
		return
	}

	items, err := h.svc.ListEquipment(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": items})
}

// CreateEquipment
// @Summary		Register equipment
// @Tags		Admin
// @Security	BearerAuth
// @Param		request	body	CreateEquipmentRequest	true	"Equipment"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Router		/admin/equipment [POST]
func (h *Handler) CreateEquipment(c *gin.Context) {
	var req CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.Details(err))
		return
	}

	e, err := h.svc.CreateEquipment(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"equipment": e})
}

func (h *Handler) GetEquipment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	e, err := h.svc.GetEquipment(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": e})
}

func (h *Handler) UpdateEquipment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.Details(err))
		return
	}

	e, err := h.svc.UpdateEquipment(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": e})
}

func (h *Handler) DeleteEquipment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteEquipment(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) SetVisibility(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "is_public is required", validator.Details(err))
		return
	}

	e, err := h.svc.SetVisibility(c.Request.Context(), id, *req.IsPublic)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": e})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Category name is required", validator.Details(err))
		return
	}

	cat, err := h.svc.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"category": cat})
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Category name is required", validator.Details(err))
		return
	}

	cat, err := h.svc.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"category": cat})
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteCategory(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input")
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown equipment status")
	case errors.Is(err, ErrInvalidCounts):
		response.Error(c, http.StatusBadRequest, "INVALID_COUNTS", "available_count must be between 0 and total_count")
	case errors.Is(err, ErrCategoryNameBlank):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Category name is required")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "EQUIPMENT_NOT_FOUND", "Equipment not found")
	case errors.Is(err, ErrCategoryNotFound):
		response.Error(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found")
	case errors.Is(err, ErrEquipmentInUse):
		response.Error(c, http.StatusConflict, "EQUIPMENT_IN_USE", "Equipment has rentals and cannot be deleted")
	case errors.Is(err, ErrCategoryInUse):
		response.Error(c, http.StatusConflict, "CATEGORY_IN_USE", "Category still has equipment")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}
