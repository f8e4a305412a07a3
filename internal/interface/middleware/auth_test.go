package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketbay/user-service/internal/domain/entity"
	"github.com/marketbay/user-service/pkg/helpers"
)

func newAuthRouter(jwt *helpers.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Auth(jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": c.GetString(CtxUserIDKey)})
	})
	r.GET("/admin", Auth(jwt), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthMissingToken(t *testing.T) {
	r := newAuthRouter(helpers.NewJWTManager("secret", time.Minute))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthBearerToken(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Minute)
	r := newAuthRouter(jwt)

	token, _, err := jwt.IssueAccessToken("user-1", []string{entity.RoleBuyer})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestAuthCookieToken(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Minute)
	r := newAuthRouter(jwt)

	token, _, err := jwt.IssueAccessToken("user-2", []string{entity.RoleBuyer})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRejectsForgedToken(t *testing.T) {
	r := newAuthRouter(helpers.NewJWTManager("secret", time.Minute))
	forger := helpers.NewJWTManager("other-secret", time.Minute)

	token, _, err := forger.IssueAccessToken("user-1", []string{entity.RoleAdmin})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Minute)
	r := newAuthRouter(jwt)

	adminToken, _, err := jwt.IssueAccessToken("root", []string{entity.RoleAdmin, entity.RoleBuyer})
	require.NoError(t, err)
	buyerToken, _, err := jwt.IssueAccessToken("user-1", []string{entity.RoleBuyer})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+buyerToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
