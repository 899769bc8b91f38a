package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/truck-repair-platform/cmd/mainconfig"
	"github.com/wolfman30/truck-repair-platform/internal/api/router"
	"github.com/wolfman30/truck-repair-platform/internal/app/bootstrap"
	"github.com/wolfman30/truck-repair-platform/internal/chatbot"
	appconfig "github.com/wolfman30/truck-repair-platform/internal/config"
	"github.com/wolfman30/truck-repair-platform/internal/content"
	"github.com/wolfman30/truck-repair-platform/internal/conversation"
	"github.com/wolfman30/truck-repair-platform/internal/leads"
	"github.com/wolfman30/truck-repair-platform/internal/notify"
	"github.com/wolfman30/truck-repair-platform/internal/observability/metrics"
	"github.com/wolfman30/truck-repair-platform/internal/webchat"
	"github.com/wolfman30/truck-repair-platform/pkg/logging"
)

var errNotificationEmailRequired = errors.New("NOTIFICATION_EMAIL is required in production")

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting truck-repair-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"lead_store", cfg.LeadStore,
	)

	ctx := context.Background()
	handler, cleanup, err := buildServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		cleanup()
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildServer wires every store, sender and handler from cfg. The cleanup func
// closes whatever connections were opened and is safe to call more than once.
func buildServer(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, func(), error) {
	if cfg.IsProduction() && strings.TrimSpace(cfg.NotificationEmail) == "" {
		return nil, func() {}, errNotificationEmailRequired
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		closers = nil
	}
	fail := func(err error) (http.Handler, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	checks := map[string]router.HealthCheck{}

	pg, err := bootstrap.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return fail(err)
	}
	if pg != nil {
		closers = append(closers, pg.Close)
		checks["postgres"] = pg.Ping
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		closers = append(closers, func() { _ = redisClient.Close() })
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var awsCfg *aws.Config
	if mainconfig.NeedsAWS(cfg) {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return fail(fmt.Errorf("load aws config: %w", err))
		}
		awsCfg = &loaded
	}

	leadRepo, closeLeads, err := bootstrap.BuildLeadRepository(ctx, cfg, pg, logger)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func() {
		if err := closeLeads(); err != nil {
			logger.Warn("close lead store", "error", err)
		}
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	chatMetrics := metrics.NewChatMetrics(reg)

	selector := chatbot.NewSelector(nil).WithShop(cfg.ShopName, cfg.ShopPhone)
	faq := chatbot.DefaultFAQ()

	dispatcher := notify.NewDispatcher(
		leadRepo,
		bootstrap.BuildEmailSender(cfg, awsCfg, logger),
		notify.NewDisabledSMSSender(logger),
		notify.DispatcherConfig{
			NotificationEmail: cfg.NotificationEmail,
			ShopName:          cfg.ShopName,
			ShopPhone:         cfg.ShopPhone,
			Timeout:           cfg.NotifyTimeout,
		},
		chatMetrics,
		logger,
	)

	engine := conversation.NewEngine(conversation.Config{
		Store:      bootstrap.BuildSessionStore(redisClient, cfg),
		Selector:   selector,
		FAQ:        faq,
		Dispatcher: dispatcher,
		Metrics:    chatMetrics,
		ShopPhone:  cfg.ShopPhone,
		Logger:     logger,
	})

	contentHandler := content.NewHandler(
		bootstrap.BuildContentRepository(pg),
		bootstrap.BuildSettingsStore(redisClient, cfg),
		bootstrap.BuildMediaStore(cfg, awsCfg),
		logger,
	)

	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set; admin routes will reject every request")
	}

	handler := router.New(&router.Config{
		Logger:              logger,
		ChatbotHandler:      chatbot.NewHandler(selector, faq, chatMetrics, logger),
		ConversationHandler: conversation.NewHandler(engine, logger),
		WebChatHandler:      webchat.NewHandler(engine, logger),
		LeadsHandler:        leads.NewHandler(leadRepo, logger),
		ContentHandler:      contentHandler,
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		HealthChecks:        checks,
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitRequests:   cfg.RateLimitRequests,
		RateLimitWindow:     cfg.RateLimitWindow,
	})
	return handler, cleanup, nil
}
