package middleware

import (
	"net/http"

	"equiprent/internal/domain"
	"equiprent/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through when the token role is one of roles.
// Must run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, ok := c.Get(CtxRole)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}

		if r, _ := role.(string); !hasRole(allowed, r) {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}

func hasRole(allowed map[string]struct{}, role string) bool {
	if role == "" {
		return false
	}
	_, ok := allowed[role]
	return ok
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}
