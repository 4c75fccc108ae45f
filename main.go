package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/metric"

	"github.com/suoapvs/alexcoffee/internal/api"
	"github.com/suoapvs/alexcoffee/internal/auth"
	"github.com/suoapvs/alexcoffee/internal/db"
	"github.com/suoapvs/alexcoffee/internal/mail"
	"github.com/suoapvs/alexcoffee/internal/metrics"
	"github.com/suoapvs/alexcoffee/internal/services"
	"github.com/suoapvs/alexcoffee/internal/session"
	"github.com/suoapvs/alexcoffee/pkg/config"
	"github.com/suoapvs/alexcoffee/pkg/logging"
)

func main() {
	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.AppMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	appMetrics, meterProvider, err := metrics.InitMetrics(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize metrics", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down meter provider", "error", err)
		}
	}()

	database, err := db.NewDB(cfg.GetDSN(), cfg.OTELServiceName)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close()

	if schemaSQL, err := os.ReadFile("schema.sql"); err != nil {
		logger.Warn("could not read schema.sql, assuming schema exists", "error", err)
	} else if err := database.InitSchema(ctx, string(schemaSQL)); err != nil {
		logger.Warn("could not initialize schema, assuming schema exists", "error", err)
	}

	// Session cart store: Redis when configured, in-process otherwise
	var carts session.Store
	if cfg.RedisAddr != "" {
		carts, err = session.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.SessionTTL)
		if err != nil {
			logger.Fatal("failed to connect to redis", "error", err)
		}
		logger.Info("using redis cart store", "addr", cfg.RedisAddr)
	} else {
		carts = session.NewMemoryStore(cfg.SessionTTL)
		logger.Info("using in-memory cart store")
	}
	defer carts.Close()

	authSvc := auth.NewService(cfg.JWTSecret, cfg.JWTTTL)
	sessions := session.NewManager(cfg.CookieSecure, int(cfg.SessionTTL.Seconds()))

	var notifier mail.Sender
	if cfg.SMTPHost != "" {
		notifier = mail.NewSMTPSender(cfg.SMTPAddr(), cfg.SMTPHost, cfg.SMTPUser, cfg.SMTPPassword,
			cfg.MailFrom, cfg.MailStaffAddr, logger)
	} else {
		logger.Warn("no SMTP relay configured, order notifications disabled")
		notifier = mail.NopSender{}
	}

	productService := services.NewProductService(database, appMetrics)
	categoryService := services.NewCategoryService(database, appMetrics)
	photoService := services.NewPhotoService(database, appMetrics)
	userService := services.NewUserService(database, appMetrics, logger)
	orderService := services.NewOrderService(database, appMetrics, logger)
	checkoutService := services.NewCheckoutService(orderService, notifier, appMetrics, logger)

	if err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Error("failed to bootstrap admin", "error", err)
	}

	app := api.NewApp(cfg, logger, appMetrics, sessions, carts, authSvc,
		productService, categoryService, photoService, userService, orderService, checkoutService)

	router := mux.NewRouter()
	app.SetupRoutes(router)

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	go monitorActiveCarts(monitorCtx, carts, appMetrics, logger)

	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.AppPort, "otlp_endpoint", cfg.OTELExporterOTLPEndpoint)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

// monitorActiveCarts periodically samples the number of live sessions
// holding a non-empty cart.
func monitorActiveCarts(ctx context.Context, carts session.Store, m *metrics.AppMetrics, logger *logging.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			count, err := carts.Count(ctx)
			if err != nil {
				logger.Warn("failed to count active carts", "error", err)
				continue
			}
			m.ActiveCartsCount.Record(ctx, int64(count),
				metric.WithAttributes(m.WithServiceName(nil)...))
		case <-ctx.Done():
			return
		}
	}
}
