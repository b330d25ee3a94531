package engine

import "errors"

var (
	// ErrMissingArgument: no version requested and the working directory
	// carries no project marker.
	ErrMissingArgument = errors.New("ACT_MISSING_ARG: no version given and no " + MarkerFile + " found")

	// ErrNotInstalled: the resolved version is absent from the store (or
	// present but not runnable). Messages wrapping it carry the install
	// hint.
	ErrNotInstalled = errors.New("ACT_NOT_INSTALLED: version is not installed")

	// ErrNoActiveVersion: current/which queried before any activation.
	ErrNoActiveVersion = errors.New("ACT_NO_ACTIVE: no active version")
)
