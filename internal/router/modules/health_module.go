package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/shubhamprakash681/truefeed/internal/interface/http"
)

type HealthModule struct{}

func NewHealthModule() *HealthModule { return &HealthModule{} }

func (m *HealthModule) Name() string { return "health" }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthcheck", handlers.Healthcheck)
}
