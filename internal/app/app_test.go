package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"equiprent/internal/config"
	"equiprent/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type E2ETestSuite struct {
	app *App
	cfg *config.Config
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type memCounter struct {
	mu   sync.Mutex
	hits map[string]int64
}

func (m *memCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[key]++
	return m.hits[key], nil
}

func setupTestSuite(t *testing.T, limiter *memCounter) *E2ETestSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.App.Env = "test"
	cfg.Auth.JWTSecret = "test_secret_key_32_characters_min"
	cfg.Admin.Email = "admin@school.example"
	cfg.Admin.Password = "Password123!"
	cfg.Redis.RateLimit = 3
	cfg.Redis.RateWindow = time.Hour

	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	deps := Deps{Config: cfg, DB: db}
	if limiter != nil {
		deps.Limiter = limiter
	}
	a := New(deps)
	t.Cleanup(a.Hub.Close)

	require.NoError(t, a.Bootstrap(context.Background(), cfg, nil))
	return &E2ETestSuite{app: a, cfg: cfg}
}

func (s *E2ETestSuite) makeRequest(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, *TestResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)

	var resp TestResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, &resp
}

func (s *E2ETestSuite) login(t *testing.T) string {
	t.Helper()
	w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/admin/auth/login", map[string]interface{}{
		"email":    s.cfg.Admin.Email,
		"password": s.cfg.Admin.Password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := resp.Data["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func idOf(t *testing.T, resp *TestResponse, key string) int64 {
	t.Helper()
	obj, ok := resp.Data[key].(map[string]interface{})
	require.True(t, ok, "missing %q in %v", key, resp.Data)
	return int64(obj["id"].(float64))
}

func TestFlow1_AdminAuth(t *testing.T) {
	suite := setupTestSuite(t, nil)

	t.Run("POST /admin/auth/login wrong password", func(t *testing.T) {
		w, resp := suite.makeRequest(t, http.MethodPost, "/api/v1/admin/auth/login", map[string]interface{}{
			"email":    suite.cfg.Admin.Email,
			"password": "nope",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "AUTH_FAILED", resp.Error.Code)
	})

	t.Run("GET /admin/auth/me", func(t *testing.T) {
		token := suite.login(t)
		w, resp := suite.makeRequest(t, http.MethodGet, "/api/v1/admin/auth/me", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		admin := resp.Data["admin"].(map[string]interface{})
		assert.Equal(t, suite.cfg.Admin.Email, admin["email"])
	})

	t.Run("admin routes need a token", func(t *testing.T) {
		w, resp := suite.makeRequest(t, http.MethodGet, "/api/v1/admin/rentals", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "AUTH_HEADER_MISSING", resp.Error.Code)
	})

	t.Run("bootstrap is idempotent", func(t *testing.T) {
		require.NoError(t, suite.app.Bootstrap(context.Background(), suite.cfg, nil))
	})
}

func TestFlow2_InventoryToReturn(t *testing.T) {
	suite := setupTestSuite(t, nil)
	token := suite.login(t)

	var categoryID, equipmentID, rentalID int64

	t.Run("create category and hidden equipment", func(t *testing.T) {
		w, resp := suite.makeRequest(t, http.MethodPost, "/api/v1/admin/categories", map[string]interface{}{"name": "Cameras"}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		categoryID = idOf(t, resp, "category")

		w, resp = suite.makeRequest(t, http.MethodPost, "/api/v1/admin/equipment", map[string]interface{}{
			"name":          "DSLR",
			"total_count":   1,
			"serial_number": "CAM-01",
			"category_id":   categoryID,
		}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		equipmentID = idOf(t, resp, "equipment")
	})

	t.Run("hidden equipment is not in the catalog", func(t *testing.T) {
		w, resp := suite.makeRequest(t, http.MethodGet, "/api/v1/equipment", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, resp.Data["equipment"])

		w, _ = suite.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/equipment/%d", equipmentID), nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("publish equipment", func(t *testing.T) {
		w, _ := suite.makeRequest(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/equipment/%d/visibility", equipmentID),
			map[string]interface{}{"is_public": true}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w, resp := suite.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/equipment?category_id=%d", categoryID), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, resp.Data["equipment"], 1)
	})

	t.Run("apply takes the only unit", func(t *testing.T) {
		body := map[string]interface{}{
			"equipment_id": equipmentID,
			"renter_name":  "Kim",
			"student_id":   "S1",
			"phone":        "010-1",
			"start_date":   "2026-03-02",
			"end_date":     "2026-03-04",
		}
		w, resp := suite.makeRequest(t, http.MethodPost, "/api/v1/rentals", body, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		rentalID = idOf(t, resp, "rental")

		body["renter_name"] = "Lee"
		w, resp = suite.makeRequest(t, http.MethodPost, "/api/v1/rentals", body, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "OUT_OF_STOCK", resp.Error.Code)
	})

	t.Run("deleting rented equipment is refused", func(t *testing.T) {
		w, resp := suite.makeRequest(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/equipment/%d", equipmentID), nil, token)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "EQUIPMENT_IN_USE", resp.Error.Code)
	})

	t.Run("admin sees the rental and the stats", func(t *testing.T) {
		w, resp := suite.makeRequest(t, http.MethodGet, "/api/v1/admin/rentals?q=kim", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, resp.Data["rentals"], 1)

		w, resp = suite.makeRequest(t, http.MethodGet, "/api/v1/admin/stats", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		stats := resp.Data["stats"].(map[string]interface{})
		assert.Equal(t, float64(1), stats["open_rentals"])
	})

	t.Run("export downloads a workbook", func(t *testing.T) {
		w, _ := suite.makeRequest(t, http.MethodGet, "/api/v1/admin/rentals/export", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1", w.Header().Get("X-Export-Rows"))
		assert.NotZero(t, w.Body.Len())
	})

	t.Run("return restocks", func(t *testing.T) {
		w, resp := suite.makeRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/rentals/%d/return", rentalID), nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		rental := resp.Data["rental"].(map[string]interface{})
		assert.Equal(t, "returned", rental["status"])

		w, resp = suite.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/equipment/%d", equipmentID), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		eq := resp.Data["equipment"].(map[string]interface{})
		assert.Equal(t, float64(1), eq["available_count"])
	})
}

func TestFlow3_RateLimitOnPublicWrites(t *testing.T) {
	suite := setupTestSuite(t, &memCounter{hits: map[string]int64{}})

	for i := 0; i < suite.cfg.Redis.RateLimit; i++ {
		w, _ := suite.makeRequest(t, http.MethodPost, "/api/v1/rentals", map[string]interface{}{}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	w, resp := suite.makeRequest(t, http.MethodPost, "/api/v1/rentals", map[string]interface{}{}, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", resp.Error.Code)

	// reads are never limited
	w, _ = suite.makeRequest(t, http.MethodGet, "/api/v1/equipment", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	suite := setupTestSuite(t, nil)

	w, resp := suite.makeRequest(t, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp.Data["status"])

	w, _ = suite.makeRequest(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "equiprent_http_requests_total")

	w, resp = suite.makeRequest(t, http.MethodGet, "/api/v1/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
