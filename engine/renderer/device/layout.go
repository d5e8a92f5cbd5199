package device

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/shader"
)

// Expanded returns the layout with every descriptor array flattened into consecutive single
// bindings, the form used by backends without binding arrays. Entries are returned in layout order.
//
// Returns:
//   - []LayoutEntry: entries with Count 1
func (l DescriptorLayout) Expanded() []LayoutEntry {
	out := make([]LayoutEntry, 0, len(l.Entries))
	for _, e := range l.Entries {
		n := max(e.Count, 1)
		for i := uint32(0); i < n; i++ {
			flat := e
			flat.Binding = e.Binding + i
			flat.Count = 1
			out = append(out, flat)
		}
	}
	return out
}

func kindOf(k shader.ResourceKind) (BindingKind, bool) {
	switch k {
	case shader.ResourceKindUniformBuffer:
		return BindingKindUniformBuffer, true
	case shader.ResourceKindSampler:
		return BindingKindSampler, true
	case shader.ResourceKindTexture2D:
		return BindingKindTexture2D, true
	case shader.ResourceKindTexture2DArray:
		return BindingKindTexture2DArray, true
	default:
		return 0, false
	}
}

// CheckShaderBindings verifies that every resource a shader declares in group matches an entry of
// the expanded layout, and that uniform entries are large enough for the declared struct.
//
// Parameters:
//   - layout: the descriptor layout bound at group
//   - group: the bind group index the layout is bound to
//   - s: the shader to check
//
// Returns:
//   - error: ErrShaderCompileFailure (wrapped) describing the first mismatch
func CheckShaderBindings(layout DescriptorLayout, group int, s shader.Shader) error {
	flat := make(map[uint32]LayoutEntry)
	for _, e := range layout.Expanded() {
		flat[e.Binding] = e
	}
	for _, b := range s.Bindings() {
		if b.Group != group {
			continue
		}
		e, ok := flat[uint32(b.Binding)]
		if !ok {
			return fmt.Errorf("%w: shader %s: @group(%d) @binding(%d) %s has no layout entry", ErrShaderCompileFailure, s.Key(), b.Group, b.Binding, b.Name)
		}
		kind, ok := kindOf(b.Kind)
		if !ok || kind != e.Kind {
			return fmt.Errorf("%w: shader %s: %s is %s, layout declares %s", ErrShaderCompileFailure, s.Key(), b.Name, b.Kind, e.Kind)
		}
		if kind == BindingKindUniformBuffer && e.MinSize > 0 && b.MinSize > 0 && b.MinSize != e.MinSize {
			return fmt.Errorf("%w: shader %s: %s is %d bytes, layout declares %d", ErrShaderCompileFailure, s.Key(), b.Name, b.MinSize, e.MinSize)
		}
	}
	return nil
}
