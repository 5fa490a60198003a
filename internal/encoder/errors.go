package encoder

import "errors"

var (
	// ErrFaceNotDetected means the service found no face in the image.
	ErrFaceNotDetected = errors.New("no face detected")

	// ErrInvalidImage rejects input that does not decode as an image. It is
	// raised before any network call.
	ErrInvalidImage = errors.New("invalid image")
)
