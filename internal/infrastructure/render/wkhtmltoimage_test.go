package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name     string
		req      *RenderRequest
		expected []string
	}{
		{
			name: "full export options",
			req: &RenderRequest{
				HTMLPath:   "/tmp/receipt-a.html",
				OutputPath: "/tmp/receipt-a.png",
				Width:      450,
				Height:     600,
				Zoom:       1.5,
				Quality:    95,
			},
			expected: []string{
				"--quiet",
				"--encoding", "UTF-8",
				"--format", "png",
				"--width", "450",
				"--height", "600",
				"--quality", "95",
				"--zoom", "1.5",
				"/tmp/receipt-a.html",
				"/tmp/receipt-a.png",
			},
		},
		{
			name: "quality and zoom omitted when unset",
			req: &RenderRequest{
				HTMLPath:   "in.html",
				OutputPath: "out.png",
				Width:      400,
				Height:     500,
			},
			expected: []string{
				"--quiet",
				"--encoding", "UTF-8",
				"--format", "png",
				"--width", "400",
				"--height", "500",
				"in.html",
				"out.png",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildArgs(tt.req))
		})
	}
}

func TestRenderRequest_Validate(t *testing.T) {
	tests := []struct {
		name         string
		req          *RenderRequest
		expectedCode string
	}{
		{
			name: "valid request",
			req: &RenderRequest{
				HTMLPath:   "in.html",
				OutputPath: "out.png",
				Width:      450,
				Height:     600,
			},
		},
		{
			name:         "nil request",
			req:          nil,
			expectedCode: ErrCodeInvalidRequest,
		},
		{
			name: "missing markup path",
			req: &RenderRequest{
				OutputPath: "out.png",
				Width:      450,
				Height:     600,
			},
			expectedCode: ErrCodeInvalidRequest,
		},
		{
			name: "missing output path",
			req: &RenderRequest{
				HTMLPath: "in.html",
				Width:    450,
				Height:   600,
			},
			expectedCode: ErrCodeInvalidRequest,
		},
		{
			name: "zero height",
			req: &RenderRequest{
				HTMLPath:   "in.html",
				OutputPath: "out.png",
				Width:      450,
			},
			expectedCode: ErrCodeInvalidRequest,
		},
		{
			name: "negative width",
			req: &RenderRequest{
				HTMLPath:   "in.html",
				OutputPath: "out.png",
				Width:      -1,
				Height:     600,
			},
			expectedCode: ErrCodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.validate()
			if tt.expectedCode == "" {
				assert.Nil(t, err)
				return
			}
			if assert.NotNil(t, err) {
				assert.Equal(t, tt.expectedCode, err.Code)
			}
		})
	}
}

func TestNewWkhtmltoimageRenderer_BinaryNotFound(t *testing.T) {
	_, err := NewWkhtmltoimageRenderer(&WkhtmltoimageConfig{
		BinaryPath: "/nonexistent/wkhtmltoimage",
	})

	assert.Error(t, err)
	var renderErr *RenderError
	if assert.ErrorAs(t, err, &renderErr) {
		assert.Equal(t, ErrCodeBinaryNotFound, renderErr.Code)
	}
}

func TestRenderError_Unwrap(t *testing.T) {
	cause := assert.AnError
	err := NewRenderError(ErrCodeRenderFailed, "boom", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}
