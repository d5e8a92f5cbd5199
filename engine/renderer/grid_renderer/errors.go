package grid_renderer

import "errors"

var (
	// ErrInvalidStateTransition is returned when an operation is not valid in the renderer's current
	// state: Initialize while Ready, or RenderFrame while Uninitialized.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrUnsupportedStrategy is returned when an explicitly requested binding strategy cannot run on
	// the device.
	ErrUnsupportedStrategy = errors.New("unsupported binding strategy")
)
