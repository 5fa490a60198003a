// Package encoder is the boundary to the external face-encoding service.
// Face detection, preprocessing and embedding computation all happen on the
// other side of this boundary; the matching core only ever sees finished
// encodings and stays independent of how they were produced.
package encoder

import "context"

// Encoder produces a face encoding from raw image bytes.
type Encoder interface {
	Encode(ctx context.Context, image []byte) ([]float32, error)
}
