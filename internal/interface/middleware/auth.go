package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marketbay/user-service/internal/domain/entity"
	"github.com/marketbay/user-service/pkg/helpers"
	"github.com/marketbay/user-service/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxRolesKey  = "userRoles"
)

// Auth validates the access token from the cookie or Authorization header
// and injects the user id and role set into the Gin context.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxRolesKey, claims.Roles)
		c.Next()
	}
}

// RequireRole gates a route on a role claim; Auth must run first.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, _ := c.Get(CtxRolesKey)
		if rs, ok := roles.([]string); ok {
			for _, r := range rs {
				if r == role {
					c.Next()
					return
				}
			}
		}
		response.Error[any](c, http.StatusForbidden, "insufficient role", nil)
	}
}

// RequireAdmin is shorthand for the admin-only routes.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(entity.RoleAdmin)
}

func tokenFromRequest(c *gin.Context) string {
	if tok, err := c.Cookie("access_token"); err == nil && tok != "" {
		return tok
	}
	const prefix = "Bearer "
	if h := c.GetHeader("Authorization"); len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}
