package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder

	"golang.org/x/image/draw"
)

const (
	// ThumbnailMaxDimension bounds the longest edge of generated thumbnails.
	ThumbnailMaxDimension = 480
	// ThumbnailQuality is the JPEG quality used for thumbnails.
	ThumbnailQuality = 80
)

// Thumbnail decodes an image, scales it so its longest edge fits within
// maxDimension, and re-encodes it as JPEG. Images already within bounds are
// still re-encoded, which strips metadata from uploads.
func Thumbnail(data []byte, maxDimension, quality int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image (format: %s): %w", format, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	newWidth, newHeight := width, height
	if width > maxDimension || height > maxDimension {
		if width > height {
			newWidth = maxDimension
			newHeight = height * maxDimension / width
		} else {
			newHeight = maxDimension
			newWidth = width * maxDimension / height
		}
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
