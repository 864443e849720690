package relay

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/receipt-relay/backend/internal/domain/receipt"
	"github.com/receipt-relay/backend/internal/infrastructure/artifact"
	"github.com/receipt-relay/backend/internal/infrastructure/render"
	"github.com/receipt-relay/backend/internal/infrastructure/telegram"
)

// Stage identifies how far one relay run progressed
type Stage string

const (
	StageReceived  Stage = "RECEIVED"
	StageParsed    Stage = "PARSED"
	StageComposed  Stage = "COMPOSED"
	StageRendered  Stage = "RENDERED"
	StageOptimized Stage = "OPTIMIZED"
	StageDelivered Stage = "DELIVERED"
	// StageCleaned terminates every run that acquired temp artifacts,
	// delivered or not; StageAborted terminates runs that failed before
	// any artifact existed.
	StageCleaned Stage = "CLEANED"
	StageAborted Stage = "ABORTED"
)

// Result records the terminal stage of one relay run, the delivery verdict
// when one exists, and the contained error. It is diagnostic only: callers
// respond the same way regardless of its contents.
type Result struct {
	Stage         Stage
	ReceiptNumber string
	Outcome       *telegram.DeliveryOutcome
	Err           error
}

// PhotoSender delivers an image file to a chat
type PhotoSender interface {
	SendPhoto(ctx context.Context, chatID string, imagePath string) (*telegram.DeliveryOutcome, error)
}

// ImageOptimizer shrinks an image file in place when it exceeds upload limits
type ImageOptimizer interface {
	OptimizeFile(path string) (int64, error)
}

// Config contains configuration for the relay service
type Config struct {
	// ChatID is the destination chat for rendered receipts
	ChatID string
	// Style is the card presentation for this deployment
	Style receipt.Style
	// RenderTimeout bounds each rasterization
	RenderTimeout time.Duration
	// Logger for pipeline diagnostics
	Logger *zap.Logger
}

// Service runs the receipt relay pipeline: parse the webhook payload, compose
// the card, rasterize it, and deliver the image to the chat.
//
// Every failure is contained here. A run that cannot complete aborts quietly;
// nothing propagates to the webhook response.
type Service struct {
	artifacts *artifact.Store
	markup    *render.TemplateEngine
	renderer  render.ImageRenderer
	optimizer ImageOptimizer
	sender    PhotoSender
	config    *Config
	logger    *zap.Logger

	// now is the footer timestamp source, replaceable in tests
	now func() time.Time
}

// NewService creates a relay service
func NewService(
	artifacts *artifact.Store,
	markup *render.TemplateEngine,
	renderer render.ImageRenderer,
	optimizer ImageOptimizer,
	sender PhotoSender,
	config *Config,
) *Service {
	if config == nil {
		config = &Config{}
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		artifacts: artifacts,
		markup:    markup,
		renderer:  renderer,
		optimizer: optimizer,
		sender:    sender,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// Relay processes one webhook payload end to end.
//
// The returned result is for logging; it never influences the HTTP response.
// Temp artifacts are released on every path that acquired them.
func (s *Service) Relay(ctx context.Context, raw []byte) *Result {
	result := &Result{Stage: StageReceived}

	rcpt, err := receipt.ParseWebhook(raw)
	if err != nil {
		result.Stage = StageAborted
		result.Err = err
		if errors.Is(err, receipt.ErrNoReceipts) {
			s.logger.Info("webhook payload carried no receipts, nothing to relay")
		} else {
			s.logger.Warn("webhook payload could not be parsed", zap.Error(err))
		}
		return result
	}
	result.ReceiptNumber = rcpt.Number
	result.Stage = StageParsed

	plan := receipt.Layout(rcpt, s.config.Style, s.now())

	html, err := s.markup.RenderHTML(plan)
	if err != nil {
		result.Stage = StageAborted
		result.Err = err
		s.logger.Error("failed to compose receipt card",
			zap.String("receipt", rcpt.Number), zap.Error(err))
		return result
	}
	result.Stage = StageComposed

	art := s.artifacts.Acquire()
	// From here on the run always terminates cleaned: release is
	// unconditional, whatever happened in between is in result.Err.
	defer func() {
		art.Release()
		result.Stage = StageCleaned
		s.logger.Info("relay run finished",
			zap.String("receipt", rcpt.Number),
			zap.Bool("delivered", result.Outcome != nil && result.Outcome.Delivered),
			zap.Error(result.Err))
	}()

	if err := art.WriteHTML(html); err != nil {
		result.Err = err
		s.logger.Error("failed to write receipt markup",
			zap.String("receipt", rcpt.Number), zap.Error(err))
		return result
	}

	_, err = s.renderer.Render(ctx, &render.RenderRequest{
		HTMLPath:   art.HTMLPath,
		OutputPath: art.ImagePath,
		Width:      plan.ExportWidth,
		Height:     plan.CanvasHeight,
		Zoom:       plan.ExportZoom,
		Quality:    plan.ExportQuality,
		Timeout:    s.config.RenderTimeout,
	})
	if err != nil {
		result.Err = err
		s.logger.Error("failed to rasterize receipt card",
			zap.String("receipt", rcpt.Number), zap.Error(err))
		return result
	}
	result.Stage = StageRendered

	if s.optimizer != nil {
		if _, err := s.optimizer.OptimizeFile(art.ImagePath); err != nil {
			// The un-optimized render is still deliverable
			s.logger.Warn("failed to optimize receipt image, sending as rendered",
				zap.String("receipt", rcpt.Number), zap.Error(err))
		} else {
			result.Stage = StageOptimized
		}
	}

	outcome, err := s.sender.SendPhoto(ctx, s.config.ChatID, art.ImagePath)
	if err != nil {
		result.Err = err
		s.logger.Error("receipt delivery failed",
			zap.String("receipt", rcpt.Number), zap.Error(err))
	} else {
		result.Outcome = outcome
		if outcome.Delivered {
			result.Stage = StageDelivered
		} else {
			s.logger.Warn("receipt delivery rejected by chat API",
				zap.String("receipt", rcpt.Number),
				zap.Int("status", outcome.StatusCode),
				zap.String("detail", outcome.Detail))
		}
	}

	return result
}
