package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/shubhamprakash681/truefeed/internal/interface/http"
	"github.com/shubhamprakash681/truefeed/internal/interface/middleware"
)

type MessageModule struct {
	Handler *handlers.MessageHandler
	Tokens  middleware.TokenDecoder
	Limits  Limits
}

func NewMessageModule(h *handlers.MessageHandler, tokens middleware.TokenDecoder, limits Limits) *MessageModule {
	return &MessageModule{Handler: h, Tokens: tokens, Limits: limits}
}

func (m *MessageModule) Name() string { return "message" }

func (m *MessageModule) Register(rg *gin.RouterGroup) {
	// anonymous senders
	rg.POST("/messages/send", m.Limits.PerMinute(30), m.Handler.Send)

	auth := rg.Group("/messages")
	auth.Use(middleware.RequireSession(m.Tokens))
	{
		auth.GET("", m.Handler.List)
		auth.GET("/accept", m.Handler.GetAccept)
		auth.POST("/accept", m.Handler.SetAccept)
	}
}
