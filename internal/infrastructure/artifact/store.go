// Package artifact manages the temporary file pair (markup source, raster
// output) that one render request owns. Every acquisition gets its own
// uniquely named pair, so concurrent requests never touch each other's files
// and no locking is needed.
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoreConfig contains configuration for the artifact store
type StoreConfig struct {
	// BaseDir is the directory artifacts are created under.
	// Default: a "receipt-relay" subdirectory of the OS temp dir.
	BaseDir string
	// Logger for cleanup diagnostics
	Logger *zap.Logger
}

// Store hands out scoped artifact pairs under a base directory
type Store struct {
	baseDir string
	logger  *zap.Logger
}

// NewStore creates an artifact store, ensuring the base directory exists
func NewStore(cfg *StoreConfig) (*Store, error) {
	if cfg == nil {
		cfg = &StoreConfig{}
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		baseDir = filepath.Join(os.TempDir(), "receipt-relay")
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory %s: %w", baseDir, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		baseDir: baseDir,
		logger:  logger,
	}, nil
}

// BaseDir returns the directory artifacts are created under
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Acquire reserves a fresh artifact pair for one render request.
// The paths carry a per-invocation token; two in-flight requests can never
// collide on a shared filename.
func (s *Store) Acquire() *Artifact {
	token := uuid.NewString()
	return &Artifact{
		Token:     token,
		HTMLPath:  filepath.Join(s.baseDir, "receipt-"+token+".html"),
		ImagePath: filepath.Join(s.baseDir, "receipt-"+token+".png"),
		logger:    s.logger,
	}
}

// Artifact is a temporary file pair owned by exactly one pipeline execution
type Artifact struct {
	Token     string
	HTMLPath  string
	ImagePath string

	logger   *zap.Logger
	released bool
}

// WriteHTML writes the markup source for this artifact
func (a *Artifact) WriteHTML(html string) error {
	if err := os.WriteFile(a.HTMLPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write markup artifact: %w", err)
	}
	return nil
}

// Release removes both files. It runs on every exit path of the owning
// pipeline execution, so a file that was never created (render failed before
// producing output) is not an error. Safe to call more than once.
func (a *Artifact) Release() {
	if a.released {
		return
	}
	a.released = true

	for _, path := range []string{a.HTMLPath, a.ImagePath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			a.logger.Warn("failed to remove render artifact",
				zap.String("path", path),
				zap.Error(err))
		}
	}
}
