package engine

import "errors"

var (
	// ErrNoTargets indicates that the target resolved to no rewritable manifest.
	ErrNoTargets = errors.New("no usable targets resolved")

	// ErrInvalidMode indicates a mode other than local or remote.
	ErrInvalidMode = errors.New("invalid mode")
)
