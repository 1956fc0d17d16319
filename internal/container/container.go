package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/shubhamprakash681/truefeed/config"
	"github.com/shubhamprakash681/truefeed/internal/interface/middleware"
	"github.com/shubhamprakash681/truefeed/internal/metrics"
	"github.com/shubhamprakash681/truefeed/pkg/helpers"
	"github.com/shubhamprakash681/truefeed/pkg/mailer"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg     *config.Config
	logger  *logrus.Logger
	pgPool  *pgxpool.Pool
	limiter middleware.Limiter

	tokens *helpers.SessionTokenManager
	sender mailer.Sender

	recorder metrics.Recorder
	gatherer prometheus.Gatherer
)

func SetConfig(c *config.Config)               { cfg = c }
func GetConfig() *config.Config                { return cfg }
func SetLogger(l *logrus.Logger)               { logger = l }
func GetLogger() *logrus.Logger                { return logger }
func SetPGPool(p *pgxpool.Pool)                { pgPool = p }
func GetPGPool() *pgxpool.Pool                 { return pgPool }
func SetLimiter(l middleware.Limiter)          { limiter = l }
func GetLimiter() middleware.Limiter           { return limiter }
func SetTokens(t *helpers.SessionTokenManager) { tokens = t }
func GetTokens() *helpers.SessionTokenManager  { return tokens }
func SetSender(s mailer.Sender)                { sender = s }
func GetSender() mailer.Sender                 { return sender }

// SetMetrics stores the recorder and the gatherer behind /api/metrics. A nil
// gatherer disables the endpoint.
func SetMetrics(r metrics.Recorder, g prometheus.Gatherer) {
	recorder = r
	gatherer = g
}

func GetRecorder() metrics.Recorder {
	if recorder == nil {
		return metrics.Nop{}
	}
	return recorder
}

func GetGatherer() prometheus.Gatherer { return gatherer }
