package render

import (
	"context"
	"time"
)

// RenderRequest contains the parameters for rendering markup to a raster image
type RenderRequest struct {
	// HTMLPath is the markup source file
	HTMLPath string
	// OutputPath is where the raster image is written
	OutputPath string
	// Width is the export width in raster pixels
	Width int
	// Height is the export height in raster pixels
	Height int
	// Zoom is the rasterization zoom factor
	Zoom float64
	// Quality is the image quality (0-100)
	Quality int
	// Timeout overrides the default rendering timeout
	Timeout time.Duration
}

// RenderResult contains the output from image rendering
type RenderResult struct {
	// OutputPath is the written image file
	OutputPath string
	// Size is the image file size in bytes
	Size int64
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
}

// ImageRenderer defines the interface for rendering an HTML file to an image
type ImageRenderer interface {
	// Render converts the markup file to a raster image at the output path
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during image rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout  = "RENDER_TIMEOUT"
	ErrCodeRenderFailed   = "RENDER_FAILED"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeBinaryNotFound = "BINARY_NOT_FOUND"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// validate checks the fields every engine requires
func (r *RenderRequest) validate() *RenderError {
	if r == nil {
		return NewRenderError(ErrCodeInvalidRequest, "render request is nil", nil)
	}
	if r.HTMLPath == "" {
		return NewRenderError(ErrCodeInvalidRequest, "markup path is empty", nil)
	}
	if r.OutputPath == "" {
		return NewRenderError(ErrCodeInvalidRequest, "output path is empty", nil)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return NewRenderError(ErrCodeInvalidRequest, "canvas dimensions must be positive", nil)
	}
	return nil
}
