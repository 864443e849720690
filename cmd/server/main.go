package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/receipt-relay/backend/internal/application/relay"
	"github.com/receipt-relay/backend/internal/domain/receipt"
	"github.com/receipt-relay/backend/internal/infrastructure/artifact"
	"github.com/receipt-relay/backend/internal/infrastructure/config"
	"github.com/receipt-relay/backend/internal/infrastructure/logger"
	"github.com/receipt-relay/backend/internal/infrastructure/loyverse"
	"github.com/receipt-relay/backend/internal/infrastructure/render"
	"github.com/receipt-relay/backend/internal/infrastructure/telegram"
	"github.com/receipt-relay/backend/internal/interfaces/http/handler"
	"github.com/receipt-relay/backend/internal/interfaces/http/middleware"
	"github.com/receipt-relay/backend/internal/interfaces/http/router"
)

func main() {
	// Load .env in development; credentials come from real env in production
	_ = godotenv.Load()

	// Load configuration; missing credentials abort startup here
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting receipt relay",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("render_engine", cfg.Render.Engine),
	)

	// Temp artifact store for the markup/image pairs
	artifacts, err := artifact.NewStore(&artifact.StoreConfig{
		BaseDir: cfg.Render.TempDir,
		Logger:  log,
	})
	if err != nil {
		log.Fatal("Failed to prepare artifact store", zap.Error(err))
	}

	// Card template
	markup, err := render.NewTemplateEngine()
	if err != nil {
		log.Fatal("Failed to parse receipt card template", zap.Error(err))
	}

	// Rasterization engine
	renderer, err := newRenderer(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize image renderer", zap.Error(err))
	}
	defer func() {
		_ = renderer.Close()
	}()

	// Delivery
	botClient, err := telegram.NewClient(&telegram.ClientConfig{
		BotToken: cfg.Telegram.BotToken,
		BaseURL:  cfg.Telegram.BaseURL,
		Timeout:  cfg.Telegram.Timeout,
		Logger:   log,
	})
	if err != nil {
		log.Fatal("Failed to initialize bot client", zap.Error(err))
	}

	// Platform read-back for the operator resend endpoint
	platformClient, err := loyverse.NewClient(&loyverse.ClientConfig{
		AccessToken: cfg.Loyverse.AccessToken,
		BaseURL:     cfg.Loyverse.BaseURL,
		Timeout:     cfg.Loyverse.Timeout,
		Logger:      log,
	})
	if err != nil {
		log.Fatal("Failed to initialize platform client", zap.Error(err))
	}

	relayService := relay.NewService(
		artifacts,
		markup,
		renderer,
		telegram.NewOptimizer(log),
		botClient,
		&relay.Config{
			ChatID:        cfg.Telegram.ChatID,
			Style:         buildStyle(&cfg.Style),
			RenderTimeout: cfg.Render.Timeout,
			Logger:        log,
		},
	)

	// Setup gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxWebhookBytes))

	router.NewRouter(engine).
		Register(handler.NewWebhookHandler(relayService)).
		Register(handler.NewAdminHandler(platformClient, relayService)).
		Register(handler.NewSystemHandler()).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newRenderer builds the configured rasterization engine
func newRenderer(cfg *config.Config, log *zap.Logger) (render.ImageRenderer, error) {
	switch cfg.Render.Engine {
	case "chromedp":
		return render.NewChromedpRenderer(&render.ChromedpConfig{
			DefaultTimeout: cfg.Render.Timeout,
			NoSandbox:      cfg.Render.NoSandbox,
			Logger:         log,
		})
	default:
		return render.NewWkhtmltoimageRenderer(&render.WkhtmltoimageConfig{
			BinaryPath:     cfg.Render.BinaryPath,
			DefaultTimeout: cfg.Render.Timeout,
			Logger:         log,
		})
	}
}

// buildStyle maps the configured presentation onto the card style
func buildStyle(cfg *config.StyleConfig) receipt.Style {
	style := receipt.DefaultStyle()

	if cfg.ShopName != "" {
		style.ShopName = cfg.ShopName
	}
	style.LogoURL = cfg.LogoURL
	if len(cfg.FooterLines) > 0 {
		style.FooterLines = cfg.FooterLines
	}
	style.CreditLine = cfg.CreditLine
	if cfg.PaymentDisplay == "single_row" {
		style.PaymentDisplay = receipt.PaymentDisplaySingleRow
	}
	if cfg.SingleRowLabel != "" {
		style.SingleRowLabel = cfg.SingleRowLabel
	}
	style.ShowOrigin = cfg.ShowOrigin

	return style
}
