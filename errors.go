package katana

import "errors"

var (
	// ErrInvalidBlendMode is returned for a blend mode outside the supported set.
	ErrInvalidBlendMode = errors.New("katana: invalid blend mode")
	// ErrDegenerateImage is returned for images with zero height or width.
	ErrDegenerateImage = errors.New("katana: degenerate image")
	// ErrShapeMismatch reports two images that were expected to share a
	// resolution but do not. It indicates a broken internal invariant and
	// aborts the run.
	ErrShapeMismatch = errors.New("katana: shape mismatch")
	// ErrUnsupportedChannelCount is returned for channel counts other than 1, 3 or 4.
	ErrUnsupportedChannelCount = errors.New("katana: unsupported channel count")
)
