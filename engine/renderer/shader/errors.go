package shader

import "errors"

// ErrCompileFailure is returned when shader source fails pre-processing, parsing or validation.
var ErrCompileFailure = errors.New("shader compile failure")
