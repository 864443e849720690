package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBinaryPath = "wkhtmltoimage"
	defaultTimeout    = 30 * time.Second
)

// WkhtmltoimageConfig contains configuration for the wkhtmltoimage renderer
type WkhtmltoimageConfig struct {
	// BinaryPath is the path to the wkhtmltoimage binary
	// If empty, will search in PATH
	BinaryPath string
	// DefaultTimeout for rendering operations
	DefaultTimeout time.Duration
	// Logger for debug output
	Logger *zap.Logger
}

// WkhtmltoimageRenderer renders HTML to PNG using the wkhtmltoimage
// command-line tool
type WkhtmltoimageRenderer struct {
	config *WkhtmltoimageConfig
	logger *zap.Logger
}

// NewWkhtmltoimageRenderer creates a new wkhtmltoimage-based renderer
func NewWkhtmltoimageRenderer(config *WkhtmltoimageConfig) (*WkhtmltoimageRenderer, error) {
	if config == nil {
		config = &WkhtmltoimageConfig{}
	}

	if config.BinaryPath == "" {
		config.BinaryPath = defaultBinaryPath
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultTimeout
	}

	binaryPath, err := resolveBinaryPath(config.BinaryPath)
	if err != nil {
		return nil, NewRenderError(ErrCodeBinaryNotFound,
			fmt.Sprintf("wkhtmltoimage binary not found: %s", config.BinaryPath), err)
	}
	config.BinaryPath = binaryPath

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WkhtmltoimageRenderer{
		config: config,
		logger: logger,
	}, nil
}

// resolveBinaryPath finds the full path to the binary
func resolveBinaryPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}

	return exec.LookPath(path)
}

// Render converts the markup file to a PNG image at the output path
func (r *WkhtmltoimageRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()

	timeout := req.Timeout
	if timeout == 0 {
		timeout = r.config.DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := buildArgs(req)

	r.logger.Debug("executing wkhtmltoimage",
		zap.String("binary", r.config.BinaryPath),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, r.config.BinaryPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("image rendering timed out after %v", timeout), err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewRenderError(ErrCodeRenderTimeout, "image rendering was cancelled", err)
		}

		r.logger.Error("wkhtmltoimage failed",
			zap.Error(err),
			zap.String("stderr", stderr.String()),
			zap.String("stdout", stdout.String()))

		return nil, NewRenderError(ErrCodeRenderFailed,
			"wkhtmltoimage execution failed: "+stderr.String(), err)
	}

	info, err := os.Stat(req.OutputPath)
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated image is missing", err)
	}
	if info.Size() == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated image is empty", nil)
	}

	renderDuration := time.Since(startTime)

	r.logger.Info("receipt image rendered",
		zap.Int64("bytes", info.Size()),
		zap.Int("width", req.Width),
		zap.Int("height", req.Height),
		zap.Duration("duration", renderDuration))

	return &RenderResult{
		OutputPath:     req.OutputPath,
		Size:           info.Size(),
		RenderDuration: renderDuration,
	}, nil
}

// buildArgs constructs the command-line arguments for wkhtmltoimage
func buildArgs(req *RenderRequest) []string {
	args := []string{
		"--quiet",
		"--encoding", "UTF-8",
		"--format", "png",
		"--width", strconv.Itoa(req.Width),
		"--height", strconv.Itoa(req.Height),
	}

	if req.Quality > 0 {
		args = append(args, "--quality", strconv.Itoa(req.Quality))
	}
	if req.Zoom > 0 {
		args = append(args, "--zoom", strconv.FormatFloat(req.Zoom, 'f', -1, 64))
	}

	args = append(args, req.HTMLPath, req.OutputPath)

	return args
}

// Close releases resources (no-op for wkhtmltoimage)
func (r *WkhtmltoimageRenderer) Close() error {
	return nil
}

// Ensure WkhtmltoimageRenderer implements ImageRenderer
var _ ImageRenderer = (*WkhtmltoimageRenderer)(nil)
