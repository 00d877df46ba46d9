package camera

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Register the formats camera frames arrive in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// MaxFramePixels caps width*height of a frame accepted by Decode.
// The header is checked before any pixel buffer is allocated.
const MaxFramePixels = 8192 * 8192

var (
	// ErrEmptyImage is returned by Decode for empty input.
	ErrEmptyImage = errors.New("empty image")
	// ErrInvalidFrame is returned for frames whose header is unreadable or too large.
	ErrInvalidFrame = errors.New("invalid frame")
)

// Decode parses an encoded PNG, JPEG or GIF frame.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %s has no pixels", ErrEmptyImage, format)
	}

	if int64(cfg.Width)*int64(cfg.Height) > MaxFramePixels {
		return nil, fmt.Errorf("%w: %s frame of %dx%d exceeds %d pixels",
			ErrInvalidFrame, format, cfg.Width, cfg.Height, MaxFramePixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}

	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s has no pixels", ErrEmptyImage, format)
	}

	return img, nil
}
