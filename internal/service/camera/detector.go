package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"sync"

	"github.com/oshokin/catpoint/internal/config"
)

// ErrUnknownDetector is returned by New for unsupported detector names.
var ErrUnknownDetector = errors.New("unknown detector")

// Detector decides whether an image contains a cat.
type Detector interface {
	ImageContainsCat(ctx context.Context, img image.Image, confidenceThreshold float32) (bool, error)
}

// RandomDetector reports a cat for roughly half of the images, regardless of content.
type RandomDetector struct {
	// rnd is the pseudo-random source.
	rnd *rand.Rand
	// mu protects rnd, which is not safe for concurrent use.
	mu sync.Mutex
}

// NewRandomDetector creates a detector drawing from src, or from a random seed when src is nil.
func NewRandomDetector(src rand.Source) *RandomDetector {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	return &RandomDetector{
		rnd: rand.New(src),
	}
}

// ImageContainsCat ignores the image and the threshold and returns a coin flip.
func (d *RandomDetector) ImageContainsCat(_ context.Context, _ image.Image, _ float32) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.rnd.IntN(2) == 1, nil
}

// StaticDetector returns a fixed verdict for every image.
type StaticDetector bool

// ImageContainsCat returns the fixed verdict.
func (d StaticDetector) ImageContainsCat(_ context.Context, _ image.Image, _ float32) (bool, error) {
	return bool(d), nil
}

// New builds the detector named by one of the config.Detector* constants.
//
//nolint:ireturn // Callers pick the implementation by configuration.
func New(name string) (Detector, error) {
	switch name {
	case config.DetectorRandom, "":
		return NewRandomDetector(nil), nil
	case config.DetectorAlways:
		return StaticDetector(true), nil
	case config.DetectorNever:
		return StaticDetector(false), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDetector, name)
	}
}
