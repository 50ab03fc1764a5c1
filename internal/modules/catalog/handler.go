package catalog

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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/equipment", h.ListEquipment)
	rg.GET("/equipment/:id", h.GetEquipment)
	rg.GET("/categories", h.ListCategories)
	rg.GET("/categories/:id", h.GetCategory)
}

// ListEquipment returns public equipment, newest first.
// @Summary		Public equipment catalog
// @Tags		Catalog
// @Param		category_id	query	int		false	"Category filter"
// @Param		q			query	string	false	"Search in name and description"
// @Success		200	{object}	map[string]interface{}
// @Router		/equipment [GET]
func (h *Handler) ListEquipment(c *gin.Context) {
	var q ListEquipmentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", validator.Details(err))
		return
	}

	items, err := h.svc.ListEquipment(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to load equipment")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"equipment": items})
}

// GetEquipment returns one public equipment item with its category.
// @Summary		Public equipment details
// @Tags		Catalog
// @Param		id	path	int	true	"Equipment ID"
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/equipment/{id} [GET]
func (h *Handler) GetEquipment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	e, err := h.svc.GetEquipment(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Equipment not found")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"equipment": e})
}

func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to load categories")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"categories": cats})
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	cat, err := h.svc.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Category not found")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"category": cat})
}

func (h *Handler) fail(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", notFound)
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
