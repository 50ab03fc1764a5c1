package middleware

import (
	"net/http"
	"strings"

	"equiprent/internal/pkg/jwt"
	"equiprent/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuth.
const (
	CtxAdminID = "admin_id"
	CtxRole    = "role"
)

// JWTAuth validates the bearer token and stores admin_id and role in the context.
func JWTAuth(jwtSvc *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := jwtSvc.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(CtxAdminID, claims.AdminID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}
