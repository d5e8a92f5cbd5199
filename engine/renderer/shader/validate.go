package shader

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Validate compiles the shader's processed source with naga so that WGSL errors surface before any
// device object is created.
//
// Parameters:
//   - s: the shader to validate
//
// Returns:
//   - error: ErrCompileFailure (wrapped with the compiler message) if the source does not compile
func Validate(s Shader) error {
	if s == nil {
		return fmt.Errorf("%w: nil shader", ErrCompileFailure)
	}
	if _, err := naga.Compile(s.Source()); err != nil {
		return fmt.Errorf("%w: shader %s: %w", ErrCompileFailure, s.Key(), err)
	}
	return nil
}
