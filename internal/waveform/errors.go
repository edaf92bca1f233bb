package waveform

import "errors"

// Error kinds shared by the signal, sector and rendering packages. Callers
// match them with errors.Is; the wrapped message names the failed check.
var (
	// ErrInvalidParameter reports a violated structural precondition such as
	// a non-positive sample count, span or sector count.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidState reports internally inconsistent data handed to the
	// renderer, for example series of different lengths.
	ErrInvalidState = errors.New("invalid state")
)
