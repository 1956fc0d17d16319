package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shubhamprakash681/truefeed/internal/metrics"
)

type DebugModule struct {
	Gatherer prometheus.Gatherer
	Limits   Limits
}

func NewDebugModule(g prometheus.Gatherer, limits Limits) *DebugModule {
	return &DebugModule{Gatherer: g, Limits: limits}
}

func (m *DebugModule) Name() string { return "debug" }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := m.Limits.PerIPPerMinute(120)
	rg.GET("/metrics", rl, gin.WrapH(metrics.Handler(m.Gatherer)))
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
