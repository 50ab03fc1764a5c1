package rental

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

// RegisterRoutes mounts the renter-facing routes on public and the back-office routes on admin.
// guards run in front of the public write endpoints (rate limiting).
func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup, guards ...gin.HandlerFunc) {
	if public != nil {
		public.POST("/rentals", chain(guards, h.Apply)...)
		public.GET("/rentals/lookup", h.Lookup)
		public.POST("/rentals/:id/return", chain(guards, h.Return)...)
	}

	if admin != nil {
		admin.GET("/rentals", h.List)
		admin.PUT("/rentals/:id/status", h.UpdateStatus)
		admin.GET("/equipment/:id/rentals", h.ListForEquipment)
	}
}

// Apply
// @Summary		Apply for a rental
// @Description	Books one unit of the equipment. The available count drops by one in the same transaction.
// @Tags		Rentals
// @Param		request	body	ApplyRequest	true	"Renter and dates"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}	"EQUIPMENT_NOT_FOUND"
// @Failure		409	{object}	map[string]interface{}	"OUT_OF_STOCK"
// @Router		/rentals [POST]
func (h *Handler) Apply(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.Details(err))
		return
	}

	r, err := h.svc.Apply(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"rental": r})
}

// Lookup
// @Summary		Find my rental
// @Tags		Rentals
// @Param		name	query	string	true	"Renter name"
// @Param		phone	query	string	true	"Renter phone"
// @Router		/rentals/lookup [GET]
func (h *Handler) Lookup(c *gin.Context) {
	var q LookupQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "name and phone are required", validator.Details(err))
		return
	}

	res, err := h.svc.Lookup(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rental": res})
}

func (h *Handler) Return(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	r, err := h.svc.Return(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rental": r})
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", validator.Details(err))
		return
	}

	items, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rentals": items})
}

func (h *Handler) ListForEquipment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", validator.Details(err))
		return
	}

	items, err := h.svc.ListForEquipment(c.Request.Context(), id, q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rentals": items})
}

// UpdateStatus
// @Summary		Change rental status
// @Description	Setting returned puts the unit back in stock unless it was already returned.
// @Tags		Admin
// @Security	BearerAuth
// @Param		id		path	int					true	"Rental ID"
// @Param		request	body	UpdateStatusRequest	true	"New status"
// @Router		/admin/rentals/{id}/status [PUT]
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "status is required", validator.Details(err))
		return
	}

	r, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rental": r})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input")
	case errors.Is(err, ErrInvalidDates):
		response.Error(c, http.StatusBadRequest, "INVALID_DATES", "Dates must be YYYY-MM-DD and end_date must not precede start_date")
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown rental status")
	case errors.Is(err, ErrEquipmentNotFound):
		response.Error(c, http.StatusNotFound, "EQUIPMENT_NOT_FOUND", "Equipment not found")
	case errors.Is(err, ErrOutOfStock):
		response.Error(c, http.StatusConflict, "OUT_OF_STOCK", "No units of this equipment are available")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "RENTAL_NOT_FOUND", "Rental not found")
	case errors.Is(err, ErrAlreadyReturned):
		response.Error(c, http.StatusConflict, "ALREADY_RETURNED", "Rental has already been returned")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}

func chain(guards []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(guards)+1)
	out = append(out, guards...)
	return append(out, h)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}
