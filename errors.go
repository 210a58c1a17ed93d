package projector

import "errors"

// Sentinel errors for the projector package.
// Use errors.Is to check: errors.Is(err, projector.ErrNonFiniteLoss)
var (
	ErrInvalidOptions = errors.New("projector: invalid options")
	ErrInvalidSteps   = errors.New("projector: num steps must be >= 1")
	ErrNonFiniteLoss  = errors.New("projector: non-finite loss")
	ErrNoTarget       = errors.New("projector: target image not set")
)
