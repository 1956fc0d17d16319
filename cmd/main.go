package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/shubhamprakash681/truefeed/config"
	"github.com/shubhamprakash681/truefeed/internal/container"
	pginfra "github.com/shubhamprakash681/truefeed/internal/infrastructure/postgres"
	"github.com/shubhamprakash681/truefeed/internal/interface/middleware"
	"github.com/shubhamprakash681/truefeed/internal/metrics"
	"github.com/shubhamprakash681/truefeed/internal/router"
	"github.com/shubhamprakash681/truefeed/pkg/helpers"
	"github.com/shubhamprakash681/truefeed/pkg/mailer"
	"github.com/shubhamprakash681/truefeed/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Initialize Postgres pool
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	// Rate limiting: shared counters in Redis when reachable, per-process otherwise
	limiter, closeLimiter := newLimiter(ctx, cfg, logger)
	defer closeLimiter()

	sender, closeSender := newSender(cfg, logger)
	defer closeSender()

	tokens := helpers.NewSessionTokenManager(cfg.SessionSecret, cfg.SessionTTL)

	var rec metrics.Recorder = metrics.Nop{}
	var gatherer prometheus.Gatherer
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rec = metrics.NewCollector(reg)
		gatherer = reg
	}

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetLimiter(limiter)
	container.SetTokens(tokens)
	container.SetSender(sender)
	container.SetMetrics(rec, gatherer)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	// CORS
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}
	r.Use(middleware.HTTPMetrics(rec))
	r.Use(middleware.Session(tokens))
	r.Use(middleware.AccessGuard(tokens))

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()
	reg.LogRoutes(logger)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}

func newLimiter(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (middleware.Limiter, func()) {
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		err := helpers.PingRedis(ctx, rdb)
		if err == nil {
			logger.WithField("addr", cfg.RedisAddr).Info("rate limiting backed by redis")
			return middleware.NewRedisLimiter(rdb), func() { _ = rdb.Close() }
		}
		logger.WithError(err).Warn("redis unavailable, using in-process rate limiting")
		_ = rdb.Close()
	}
	local := middleware.NewLocalLimiter(10 * time.Minute)
	return local, local.Stop
}

func newSender(cfg *config.Config, logger *logrus.Logger) (mailer.Sender, func()) {
	switch {
	case !cfg.MailSendEnabled:
		logger.Warn("MAIL_SEND_ENABLED=false; verification codes are logged, not emailed")
		return mailer.NewLogSender(logger), func() {}
	case cfg.QueueDelivery():
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		return mailer.NewQueueSender(pub, cfg, logger), pub.Close
	default:
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
			logger.Warn("mailgun not configured; verification emails will fail to send")
		}
		mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		return mailer.NewDirectSender(mg, cfg, logger), func() {}
	}
}
