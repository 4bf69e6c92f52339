package loaders

import "errors"

var (
	// ErrUnsupportedFormat is returned for image extensions with no encoder
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrUnknownShape is returned for scene objects of an unknown type
	ErrUnknownShape = errors.New("unknown object type")
)
