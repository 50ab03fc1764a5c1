package rental

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"equiprent/internal/database"
	"equiprent/internal/domain"
	"equiprent/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type rentalData struct {
	Rental domain.Rental `json:"rental"`
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	pub    *recordingPublisher
}

func setup(t *testing.T) *testEnv {
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

	pub := &recordingPublisher{}
	svc := NewService(repository.NewRentalRepository(db), pub, nil)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"), r.Group("/api/v1/admin"))
	return &testEnv{router: r, db: db, pub: pub}
}

func (e *testEnv) equipment(t *testing.T, name string, total int) *domain.Equipment {
	t.Helper()
	eq := &domain.Equipment{Name: name, Status: domain.EquipmentAvailable, TotalCount: total, AvailableCount: total, IsPublic: true}
	require.NoError(t, repository.NewEquipmentRepository(e.db).Create(context.Background(), eq))
	return eq
}

func (e *testEnv) available(t *testing.T, id int64) int {
	t.Helper()
	eq, err := repository.NewEquipmentRepository(e.db).GetByID(context.Background(), id)
	require.NoError(t, err)
	return eq.AvailableCount
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func applyBody(equipmentID int64, name, phone string) gin.H {
	return gin.H{
		"equipment_id": equipmentID,
		"renter_name":  name,
		"renter_class": "1-2",
		"student_id":   "S100",
		"email":        "kim@school.example",
		"phone":        phone,
		"start_date":   "2026-03-02",
		"end_date":     "2026-03-04",
	}
}

func TestHandler_ApplyLookupReturn(t *testing.T) {
	env := setup(t)
	eq := env.equipment(t, "Camera", 1)

	code, resp := env.do(t, http.MethodPost, "/api/v1/rentals", applyBody(eq.ID, "Kim", "010-1"))
	require.Equal(t, http.StatusCreated, code, resp.Error.Code)
	var created rentalData
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, domain.RentalRented, created.Rental.Status)
	assert.Equal(t, 0, env.available(t, eq.ID))

	code, resp = env.do(t, http.MethodPost, "/api/v1/rentals", applyBody(eq.ID, "Lee", "010-2"))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "OUT_OF_STOCK", resp.Error.Code)

	code, resp = env.do(t, http.MethodPost, "/api/v1/rentals", applyBody(9999, "Lee", "010-2"))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "EQUIPMENT_NOT_FOUND", resp.Error.Code)

	q := url.Values{"name": {"Kim"}, "phone": {"010-1"}}
	code, resp = env.do(t, http.MethodGet, "/api/v1/rentals/lookup?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, code)
	var found struct {
		Rental LookupResult `json:"rental"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &found))
	assert.Equal(t, created.Rental.ID, found.Rental.ID)
	assert.Equal(t, "Camera", found.Rental.EquipmentName)

	code, _ = env.do(t, http.MethodGet, "/api/v1/rentals/lookup?name=Kim", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	returnPath := fmt.Sprintf("/api/v1/rentals/%d/return", created.Rental.ID)
	code, resp = env.do(t, http.MethodPost, returnPath, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.available(t, eq.ID))

	code, resp = env.do(t, http.MethodPost, returnPath, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_RETURNED", resp.Error.Code)
	assert.Equal(t, 1, env.available(t, eq.ID))

	code, resp = env.do(t, http.MethodPost, "/api/v1/rentals/abc/return", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_ID", resp.Error.Code)

	code, _ = env.do(t, http.MethodPost, "/api/v1/rentals/4242/return", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = env.do(t, http.MethodGet, "/api/v1/rentals/lookup?"+q.Encode(), nil)
	assert.Equal(t, http.StatusNotFound, code)

	types := make([]domain.RentalEventType, 0)
	for _, ev := range env.pub.Events() {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []domain.RentalEventType{domain.EventRentalCreated, domain.EventRentalReturned}, types)
}

func TestHandler_ApplyValidation(t *testing.T) {
	env := setup(t)
	eq := env.equipment(t, "Tripod", 2)

	body := applyBody(eq.ID, "", "010")
	body["email"] = "not-an-email"
	code, resp := env.do(t, http.MethodPost, "/api/v1/rentals", body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "required", resp.Error.Details["renter_name"])
	assert.Equal(t, "email", resp.Error.Details["email"])

	body = applyBody(eq.ID, "Kim", "010")
	body["end_date"] = "2026-03-01"
	code, resp = env.do(t, http.MethodPost, "/api/v1/rentals", body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_DATES", resp.Error.Code)
	assert.Equal(t, 2, env.available(t, eq.ID))
}

func TestHandler_ConcurrentApplyNeverOversells(t *testing.T) {
	env := setup(t)
	eq := env.equipment(t, "Projector", 3)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var buf bytes.Buffer
			_ = json.NewEncoder(&buf).Encode(applyBody(eq.ID, fmt.Sprintf("R%d", i), fmt.Sprintf("010-%d", i)))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/rentals", &buf)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)
			if w.Code == http.StatusCreated {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, created)
	assert.Equal(t, 0, env.available(t, eq.ID))
}

func TestHandler_AdminStatusAndLists(t *testing.T) {
	env := setup(t)
	eq := env.equipment(t, "Mic", 2)
	other := env.equipment(t, "Laptop", 2)

	_, resp := env.do(t, http.MethodPost, "/api/v1/rentals", applyBody(eq.ID, "Park Jisoo", "010-7"))
	var r1 rentalData
	require.NoError(t, json.Unmarshal(resp.Data, &r1))
	_, _ = env.do(t, http.MethodPost, "/api/v1/rentals", applyBody(other.ID, "Choi", "010-8"))
	assert.Equal(t, 1, env.available(t, eq.ID))

	statusPath := fmt.Sprintf("/api/v1/admin/rentals/%d/status", r1.Rental.ID)

	code, resp := env.do(t, http.MethodPut, statusPath, gin.H{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_STATUS", resp.Error.Code)

	code, _ = env.do(t, http.MethodPut, statusPath, gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.available(t, eq.ID))

	code, _ = env.do(t, http.MethodPut, statusPath, gin.H{"status": "returned"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, env.available(t, eq.ID))

	code, _ = env.do(t, http.MethodPut, statusPath, gin.H{"status": "returned"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, env.available(t, eq.ID), "repeated returned must not restock twice")

	code, _ = env.do(t, http.MethodPut, "/api/v1/admin/rentals/5555/status", gin.H{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = env.do(t, http.MethodGet, "/api/v1/admin/rentals?status=returned", nil)
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Rentals []domain.Rental `json:"rentals"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list.Rentals, 1)
	assert.Equal(t, r1.Rental.ID, list.Rentals[0].ID)
	require.NotNil(t, list.Rentals[0].Equipment)
	assert.Equal(t, "Mic", list.Rentals[0].Equipment.Name)

	code, resp = env.do(t, http.MethodGet, "/api/v1/admin/rentals?q=jisoo", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list.Rentals, 1)

	code, resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/equipment/%d/rentals", other.ID), nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list.Rentals, 1)
	assert.Equal(t, "Choi", list.Rentals[0].RenterName)

	code, _ = env.do(t, http.MethodGet, "/api/v1/admin/rentals?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
