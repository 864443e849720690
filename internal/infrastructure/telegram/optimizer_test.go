package telegram

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImageOfSize(t *testing.T, width, height int) string {
	t.Helper()
	img := imaging.New(width, height, color.White)
	path := filepath.Join(t.TempDir(), "receipt.png")
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestOptimizer_SmallImagePassesThrough(t *testing.T) {
	path := writeImageOfSize(t, 675, 900)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	size, err := NewOptimizer(nil).OptimizeFile(path)
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, int64(len(before)), size)
	assert.Equal(t, before, after)
}

func TestOptimizer_OversizedImageDownscaled(t *testing.T) {
	path := writeImageOfSize(t, 5000, 200)

	_, err := NewOptimizer(nil).OptimizeFile(path)
	require.NoError(t, err)

	img, err := imaging.Open(path)
	require.NoError(t, err)

	assert.Equal(t, maxPhotoDimension, img.Bounds().Dx())
	assert.Less(t, img.Bounds().Dy(), 200)
}

func TestOptimizer_TallImageDownscaled(t *testing.T) {
	path := writeImageOfSize(t, 200, 5000)

	_, err := NewOptimizer(nil).OptimizeFile(path)
	require.NoError(t, err)

	img, err := imaging.Open(path)
	require.NoError(t, err)

	assert.Equal(t, maxPhotoDimension, img.Bounds().Dy())
}

func TestOptimizer_MissingFileIsError(t *testing.T) {
	_, err := NewOptimizer(nil).OptimizeFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
