package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/marketbay/user-service/internal/application"
	"github.com/marketbay/user-service/internal/interface/middleware"
	"github.com/marketbay/user-service/pkg/response"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// GetProfile GET /api/users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("profile lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "profile lookup failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"verified":   u.Verified,
		"roles":      u.Roles,
		"created_at": u.CreatedAt,
	}, "profile", nil)
}

// ApplyForSeller POST /api/users/me/apply-seller
func (h *UserHandler) ApplyForSeller(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.ApplyForSeller(c.Request.Context(), uid); err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("seller application failed")
		response.Error[any](c, http.StatusInternalServerError, "seller application failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"seller": true}, "seller role granted", nil)
}

// PromoteToAdmin POST /api/users/:id/promote
func (h *UserHandler) PromoteToAdmin(c *gin.Context) {
	requester := c.GetString(middleware.CtxUserIDKey)
	target := c.Param("id")
	if err := h.Svc.PromoteToAdmin(c.Request.Context(), target, requester); err != nil {
		switch {
		case errors.Is(err, application.ErrUnauthorized):
			response.Error[any](c, http.StatusForbidden, "only admins can promote users", nil)
		case errors.Is(err, application.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
		default:
			h.Logger.WithError(err).Error("promotion failed")
			response.Error[any](c, http.StatusInternalServerError, "promotion failed", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"admin": true}, "admin role granted", nil)
}

// SearchUsers GET /api/users/search?q=&size=
func (h *UserHandler) SearchUsers(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("user search failed")
		response.Error[any](c, http.StatusInternalServerError, "user search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}
