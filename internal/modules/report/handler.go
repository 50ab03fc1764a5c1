package report

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"equiprent/internal/pkg/response"
	"equiprent/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/rentals/export", h.Export)
	admin.GET("/stats", h.Stats)
}

// Export
// @Summary		Download rentals as Excel
// @Tags		Admin
// @Security	BearerAuth
// @Param		status		query	string	false	"Rental status"
// @Param		category_id	query	int		false	"Category"
// @Param		q			query	string	false	"Search"
// @Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router		/admin/rentals/export [GET]
func (h *Handler) Export(c *gin.Context) {
	var q ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", validator.Details(err))
		return
	}

	// buffered so a failure can still produce a JSON error
	var buf bytes.Buffer
	n, err := h.svc.ExportRentals(c.Request.Context(), q, &buf)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			response.Error(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown rental status")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to build export")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, ExportFileName(time.Now())))
	c.Header("X-Export-Rows", strconv.Itoa(n))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to load stats")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": st})
}
