package auth

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
	"equiprent/internal/middleware"
	"equiprent/internal/pkg/jwt"
	"equiprent/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_LoginAndMe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	jwtSvc := jwt.New("handler-secret", time.Hour)
	svc := NewService(repository.NewAdminRepository(db), jwtSvc, nil)
	created, err := svc.EnsureAdmin(context.Background(), "admin@school.example", "s3cret!", "Ms. Admin")
	require.NoError(t, err)
	require.True(t, created)

	h := NewHandler(svc)
	r := gin.New()
	admin := r.Group("/api/v1/admin")
	h.RegisterPublicRoutes(admin)
	protected := admin.Group("", middleware.JWTAuth(jwtSvc), middleware.AdminOnly())
	h.RegisterProtectedRoutes(protected)

	login := func(password string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(gin.H{"email": "admin@school.example", "password": password})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := login("nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_FAILED")

	w = login("s3cret!")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Data.AccessToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ms. Admin")
	assert.NotContains(t, w.Body.String(), "password")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_HEADER_MISSING")
}
