package loaders

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quadImage is 2x2: white, red / green, blue
func quadImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 255, A: 255})
	img.Set(0, 1, color.RGBA{G: 255, A: 255})
	img.Set(1, 1, color.RGBA{B: 255, A: 255})
	return img
}

func TestSaveAndLoadTexture(t *testing.T) {
	for _, ext := range []string{"png", "bmp", "tiff", "tif"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "quad."+ext)
			require.NoError(t, SaveImage(path, quadImage()))

			texture, err := LoadTexture(path)
			require.NoError(t, err)

			assert.Equal(t, 2, texture.Width)
			assert.Equal(t, 2, texture.Height)
			assert.Equal(t, core.NewVec3(1, 1, 1), texture.Pixels[0])
			assert.Equal(t, core.NewVec3(1, 0, 0), texture.Pixels[1])
			assert.Equal(t, core.NewVec3(0, 1, 0), texture.Pixels[2])
			assert.Equal(t, core.NewVec3(0, 0, 1), texture.Pixels[3])
		})
	}
}

func TestSaveImage_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.gif", "out"} {
		path := filepath.Join(dir, name)
		err := SaveImage(path, quadImage())
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), "no file is created for %s", name)
	}
}

func TestEncodeImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeImage(&buf, quadImage(), "BMP"))
	assert.Equal(t, "BM", buf.String()[:2])

	assert.ErrorIs(t, EncodeImage(&buf, quadImage(), "jpeg"), ErrUnsupportedFormat)
}

func TestLoadTexture_Errors(t *testing.T) {
	_, err := LoadTexture(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	_, err = LoadTexture(path)
	assert.Error(t, err)
}
