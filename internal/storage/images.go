// Package storage processes uploaded post images and persists them in
// object storage.
package storage

import (
	"bytes"
	"image"

	// Register decoders for the upload formats we accept.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"quill/internal/models"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

// maxDimension bounds the longest side of a stored image.
const maxDimension = 1280

const webpQuality = 85

// Process decodes an uploaded image, downscales it to fit maxDimension and
// re-encodes it as WebP. Undecodable input is a validation error, not an
// internal one: the bytes came straight from the form.
func Process(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewValidationError("Unsupported image format")
	}

	img = fit(img)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, models.NewInternalError(err)
	}
	return buf.Bytes(), nil
}

// fit downscales an image so its longest side is at most maxDimension,
// preserving aspect ratio. Images already within bounds pass through.
func fit(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDimension && h <= maxDimension {
		return img
	}

	scale := float64(maxDimension) / float64(w)
	if h > w {
		scale = float64(maxDimension) / float64(h)
	}
	dstW := int(float64(w) * scale)
	dstH := int(float64(h) * scale)

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
