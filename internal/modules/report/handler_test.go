package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"equiprent/internal/database"
	"equiprent/internal/domain"
	"equiprent/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	ctx := context.Background()
	cat := &domain.Category{Name: "Audio"}
	require.NoError(t, repository.NewCategoryRepository(db).Create(ctx, cat))
	eq := &domain.Equipment{Name: "Mic", CategoryID: &cat.ID, Status: domain.EquipmentAvailable, TotalCount: 3, AvailableCount: 3, IsPublic: true}
	require.NoError(t, repository.NewEquipmentRepository(db).Create(ctx, eq))

	rentals := repository.NewRentalRepository(db)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for _, name := range []string{"Kim", "Lee"} {
		require.NoError(t, rentals.Apply(ctx, &domain.Rental{
			EquipmentID: eq.ID, RenterName: name, StudentID: "S-" + name, Phone: "010", StartDate: day, EndDate: day,
		}))
	}

	svc := NewService(rentals, repository.NewEquipmentRepository(db), repository.NewCategoryRepository(db))
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1/admin"))
	return r
}

func TestHandler_Export(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/rentals/export?q=kim", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=\"rentals_")
	assert.Equal(t, "1", w.Header().Get("X-Export-Rows"))

	book, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(sheetRentals)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Kim", rows[1][4])
	assert.Equal(t, "Audio", rows[1][3])
}

func TestHandler_Export_InvalidStatus(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/rentals/export?status=lost", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATUS")
}

func TestHandler_Stats(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Stats Stats `json:"stats"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	st := resp.Data.Stats
	assert.Equal(t, int64(1), st.Categories)
	assert.Equal(t, int64(3), st.Equipment.Units)
	assert.Equal(t, int64(1), st.Equipment.Available)
	assert.Equal(t, int64(2), st.Rentals[domain.RentalRented])
	assert.Equal(t, int64(2), st.Open)
}
