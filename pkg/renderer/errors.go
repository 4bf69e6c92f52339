package renderer

import "errors"

var (
	// ErrInvalidSampleCount is returned when samples per pixel is neither 1 nor a power of two
	ErrInvalidSampleCount = errors.New("samples per pixel must be 1 or a power of two")

	// ErrNoCamera is returned when rendering a scene without a camera
	ErrNoCamera = errors.New("scene has no camera")

	// ErrInterrupted is returned when a render is cancelled before all tiles complete
	ErrInterrupted = errors.New("render interrupted")

	// ErrInvalidFrameSize is returned for non-positive image dimensions
	ErrInvalidFrameSize = errors.New("frame width and height must be positive")
)
