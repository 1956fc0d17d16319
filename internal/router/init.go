package router

import (
	"github.com/shubhamprakash681/truefeed/internal/application"
	"github.com/shubhamprakash681/truefeed/internal/container"
	"github.com/shubhamprakash681/truefeed/internal/domain/repository"
	pginfra "github.com/shubhamprakash681/truefeed/internal/infrastructure/postgres"
	handlers "github.com/shubhamprakash681/truefeed/internal/interface/http"
	"github.com/shubhamprakash681/truefeed/internal/router/modules"
	"github.com/shubhamprakash681/truefeed/pkg/helpers"
)

// Deps is everything the modules need; built from the container in production
// and from in-memory repositories in tests.
type Deps struct {
	Users    repository.UserRepository
	Messages repository.MessageRepository
}

func buildDeps() Deps {
	pool := container.GetPGPool()
	return Deps{
		Users:    pginfra.NewUserRepository(pool),
		Messages: pginfra.NewMessageRepository(pool),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	InitModulesWith(r, buildDeps())
}

func InitModulesWith(r *Registry, d Deps) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	rec := container.GetRecorder()
	tokens := container.GetTokens()
	limiter := container.GetLimiter()
	hasher := helpers.BcryptHasher{}

	accounts := application.NewAccountService(d.Users, hasher, container.GetSender(), rec, logger)
	auth := application.NewAuthService(d.Users, hasher, tokens, rec, logger)
	messages := application.NewMessageService(d.Users, d.Messages, rec, logger)

	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)
	limits := modules.Limits{Limiter: limiter, BypassPrivate: cfg.Env == "development"}

	r.Add(modules.NewHealthModule())
	r.Add(modules.NewAccountModule(
		handlers.NewAuthHandler(accounts, auth, cookies, logger),
		handlers.NewUserHandler(accounts, logger),
		tokens, limits,
	))
	r.Add(modules.NewMessageModule(handlers.NewMessageHandler(messages, logger), tokens, limits))
	if g := container.GetGatherer(); g != nil && cfg.MetricsEnabled {
		r.Add(modules.NewDebugModule(g, limits))
	}
}
