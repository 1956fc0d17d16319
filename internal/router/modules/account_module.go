package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/shubhamprakash681/truefeed/internal/interface/http"
	"github.com/shubhamprakash681/truefeed/internal/interface/middleware"
)

// AccountModule wires signup, verification and session routes.
// Public: POST /api/signup, POST /api/user/verify, GET /api/user/check-username-unique,
// POST /api/auth/login, POST /api/auth/logout
// Protected: GET /api/auth/session
type AccountModule struct {
	Auth   *handlers.AuthHandler
	User   *handlers.UserHandler
	Tokens middleware.TokenDecoder
	Limits Limits
}

func NewAccountModule(auth *handlers.AuthHandler, user *handlers.UserHandler, tokens middleware.TokenDecoder, limits Limits) *AccountModule {
	return &AccountModule{Auth: auth, User: user, Tokens: tokens, Limits: limits}
}

func (m *AccountModule) Name() string { return "account" }

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	rg.POST("/signup", m.Limits.PerMinute(10), m.Auth.Signup)
	rg.POST("/user/verify", m.Limits.PerMinute(30), m.Auth.Verify)
	rg.GET("/user/check-username-unique", m.Limits.PerMinute(60), m.User.CheckUsernameUnique)
	rg.POST("/auth/login", m.Limits.PerMinute(10), m.Auth.Login)
	rg.POST("/auth/logout", m.Auth.Logout)

	auth := rg.Group("/auth")
	auth.Use(middleware.RequireSession(m.Tokens))
	{
		auth.GET("/session", m.Auth.Session)
	}
}
