// Package embedding talks to the face embedding server and exposes it as an
// injectable provider for the match engine.
package embedding

import (
	"context"
	"errors"
)

// ErrNoFace is returned when extraction found no usable face in the image.
// It is a terminal outcome for that image: callers must prompt for a new
// capture, not retry the same bytes.
var ErrNoFace = errors.New("no face detected")

// Provider computes a fixed-length face embedding from raw image bytes.
// Implementations must produce vectors of consistent dimensionality across
// calls and return ErrNoFace when no face is detectable. Any other error is
// an infrastructure failure, not a verification outcome.
type Provider interface {
	Extract(ctx context.Context, imageData []byte) ([]float32, error)
}
