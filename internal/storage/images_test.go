package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessReencodesToWebP(t *testing.T) {
	out, err := Process(encodePNG(t, 64, 64))
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	// RIFF container header marks a WebP file
	assert.Equal(t, []byte("RIFF"), out[:4])
}

func TestProcessRejectsGarbage(t *testing.T) {
	_, err := Process([]byte("definitely not an image"))
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestFitDownscalesLargeImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4000, 2000))
	dst := fit(src)

	bounds := dst.Bounds()
	assert.Equal(t, maxDimension, bounds.Dx())
	assert.Equal(t, 640, bounds.Dy())
}

func TestFitKeepsSmallImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	assert.Equal(t, src, fit(src))
}
