package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marketbay/user-service/internal/container"
	handlers "github.com/marketbay/user-service/internal/interface/http"
	"github.com/marketbay/user-service/internal/interface/middleware"
	"github.com/marketbay/user-service/pkg/helpers"
)

type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/users")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/me", m.Handler.GetProfile)
		auth.POST("/me/apply-seller", m.Handler.ApplyForSeller)
	}

	admin := rg.Group("/users")
	admin.Use(middleware.Auth(m.JWT), middleware.RequireAdmin())
	{
		admin.POST("/:id/promote", m.Handler.PromoteToAdmin)
		admin.GET("/search", m.Handler.SearchUsers)
	}
}
