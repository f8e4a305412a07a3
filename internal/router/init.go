package router

import (
	"github.com/marketbay/user-service/internal/application"
	"github.com/marketbay/user-service/internal/container"
	pginfra "github.com/marketbay/user-service/internal/infrastructure/postgres"
	handlers "github.com/marketbay/user-service/internal/interface/http"
	"github.com/marketbay/user-service/internal/router/modules"
	"github.com/marketbay/user-service/pkg/helpers"
	"github.com/marketbay/user-service/pkg/mailer"
)

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	repo := pginfra.NewUserRepository(container.GetPGPool())
	notifier := mailer.NewQueueNotifier(container.GetRabbitPub(), cfg.VerifyEmailURL, cfg.VerificationTTL)

	authSvc := application.NewAuthService(
		repo,
		helpers.BcryptHasher{},
		container.GetJWT(),
		notifier,
		container.GetRedis(),
		container.GetLogger(),
		container.GetES(),
		cfg.ESUsersIndex,
		cfg.VerificationTTL,
		cfg.RefreshTTL,
	)
	userSvc := application.NewUserService(
		repo,
		container.GetLogger(),
		container.GetES(),
		cfg.ESUsersIndex,
	)

	authHandler := handlers.NewAuthHandler(authSvc, container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure)
	userHandler := handlers.NewUserHandler(userSvc, container.GetLogger())

	r.Add(modules.NewAuthModule(authHandler))
	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
}
