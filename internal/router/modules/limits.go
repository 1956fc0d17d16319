package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shubhamprakash681/truefeed/internal/interface/middleware"
)

// Limits builds per-route IP rate limiters.
type Limits struct {
	Limiter       middleware.Limiter
	BypassPrivate bool
}

// PerMinute limits each client IP to max requests per minute on one route.
func (l Limits) PerMinute(max int) gin.HandlerFunc {
	return middleware.RateLimit(l.Limiter, max, time.Minute, middleware.KeyByIPAndPath(), l.allow())
}

// PerIPPerMinute shares one budget across every route it is attached to.
func (l Limits) PerIPPerMinute(max int) gin.HandlerFunc {
	return middleware.RateLimit(l.Limiter, max, time.Minute, middleware.KeyByIP(), l.allow())
}

func (l Limits) allow() middleware.AllowFunc {
	if l.BypassPrivate {
		return middleware.AllowPrivateIP()
	}
	return nil
}
