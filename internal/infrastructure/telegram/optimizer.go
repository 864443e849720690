package telegram

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Bot API photo limits. Uploads past these bounds are rejected server-side,
// so oversized renders are downscaled and re-encoded before dispatch.
const (
	// maxPhotoBytes is the bot API photo upload ceiling (10MB)
	maxPhotoBytes = 10 * 1024 * 1024
	// maxPhotoDimension keeps width+height under the API's 10000px sum limit
	maxPhotoDimension = 4096
	// optimizedQuality is the JPEG quality for re-encoded uploads
	optimizedQuality = 85
)

// Optimizer shrinks rendered receipt images that would exceed the bot API
// photo limits. Images already within bounds pass through untouched.
type Optimizer struct {
	logger *zap.Logger
}

// NewOptimizer creates an image optimizer
func NewOptimizer(logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{logger: logger}
}

// OptimizeFile rewrites the image at path in place when it exceeds the
// upload limits. Returns the final size in bytes.
func (o *Optimizer) OptimizeFile(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat receipt image: %w", err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to decode receipt image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	withinDimensions := width <= maxPhotoDimension && height <= maxPhotoDimension
	if withinDimensions && info.Size() <= maxPhotoBytes {
		return info.Size(), nil
	}

	if !withinDimensions {
		img = downscale(img, width, height)
		o.logger.Debug("receipt image downscaled",
			zap.Int("width", width),
			zap.Int("height", height),
			zap.Int("new_width", img.Bounds().Dx()),
			zap.Int("new_height", img.Bounds().Dy()))
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: optimizedQuality}); err != nil {
		return 0, fmt.Errorf("failed to re-encode receipt image: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("failed to rewrite receipt image: %w", err)
	}

	o.logger.Info("receipt image optimized for upload",
		zap.Int64("original_bytes", info.Size()),
		zap.Int("optimized_bytes", buf.Len()))

	return int64(buf.Len()), nil
}

// downscale resizes to fit maxPhotoDimension, preserving aspect ratio
func downscale(img image.Image, width, height int) image.Image {
	if width >= height {
		return imaging.Resize(img, maxPhotoDimension, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxPhotoDimension, imaging.Lanczos)
}
