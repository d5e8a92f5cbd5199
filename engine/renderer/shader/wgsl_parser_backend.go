package shader

import (
	"strconv"
	"strings"
)

// wgslPrimitiveLayoutMap maps WGSL scalar, vector and matrix type names to their size and alignment.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec3<u32>": {12, 16},
	"vec3u":     {12, 16},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},

	"mat3x3<f32>": {48, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

// roundUpAlign rounds value up to the next multiple of alignment, which must be a power of two.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout resolves a WGSL type name to its size and alignment using primitives,
// previously computed struct layouts and named u32 constants for array counts.
// Runtime-sized arrays resolve to a single element stride.
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout, consts map[string]uint64) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return wgslTypeLayout{}, false
	}
	inner = strings.TrimSuffix(inner, ">")
	elemType, countStr, sized := cutLastTopLevelComma(inner)

	elemLayout, ok := resolveTypeLayout(strings.TrimSpace(elemType), knownTypes, consts)
	if !ok {
		return wgslTypeLayout{}, false
	}
	stride := roundUpAlign(elemLayout.align, elemLayout.size)
	if !sized {
		return wgslTypeLayout{stride, elemLayout.align}, true
	}

	countStr = strings.TrimSuffix(strings.TrimSpace(countStr), "u")
	count, err := strconv.ParseUint(countStr, 10, 64)
	if err != nil {
		named, found := consts[countStr]
		if !found {
			return wgslTypeLayout{}, false
		}
		count = named
	}
	return wgslTypeLayout{count * stride, elemLayout.align}, true
}

// computeStructLayout computes the size and alignment of a struct: each field is placed at the
// next aligned offset and the total is rounded up to the largest field alignment.
func computeStructLayout(ps parsedStruct, knownTypes map[string]wgslTypeLayout, consts map[string]uint64) (wgslTypeLayout, bool) {
	offset := uint64(0)
	maxAlign := uint64(1)

	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		fieldLayout, ok := resolveTypeLayout(field.typeName, knownTypes, consts)
		if !ok {
			return wgslTypeLayout{}, false
		}
		offset = roundUpAlign(fieldLayout.align, offset) + fieldLayout.size
		maxAlign = max(maxAlign, fieldLayout.align)
	}

	return wgslTypeLayout{roundUpAlign(maxAlign, offset), maxAlign}, true
}

// computeStructSizes resolves the layout of every parsed struct, iterating until structs that
// embed other structs have been resolved.
func computeStructSizes(structs []parsedStruct, consts map[string]uint64) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	remaining := append([]parsedStruct(nil), structs...)

	for len(remaining) > 0 {
		progress := false
		next := remaining[:0]
		for _, ps := range remaining {
			if layout, ok := computeStructLayout(ps, resolved, consts); ok {
				resolved[ps.name] = layout
				progress = true
			} else {
				next = append(next, ps)
			}
		}
		remaining = next
		if !progress {
			break
		}
	}

	return resolved
}

// classifyResource determines the resource kind from a declaration's address space and type.
func classifyResource(addressSpace, typeName string) ResourceKind {
	switch {
	case addressSpace == "uniform":
		return ResourceKindUniformBuffer
	case strings.HasPrefix(addressSpace, "storage"):
		return ResourceKindStorageBuffer
	}

	base, _ := splitTypeParams(typeName)
	switch base {
	case "sampler":
		return ResourceKindSampler
	case "texture_2d":
		return ResourceKindTexture2D
	case "texture_2d_array":
		return ResourceKindTexture2DArray
	}
	return ResourceKindUnknown
}

// splitTypeParams splits a parameterized WGSL type into its base name and parameter string.
// For "texture_2d<f32>" returns ("texture_2d", "f32").
func splitTypeParams(typeName string) (base string, params string) {
	before, after, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return before, strings.TrimSpace(strings.TrimSuffix(after, ">"))
}

// cutLastTopLevelComma splits "T, N" into ("T", "N", true), ignoring commas nested in angle brackets.
func cutLastTopLevelComma(s string) (string, string, bool) {
	parts := splitAtTopLevelCommas(s)
	if len(parts) < 2 {
		return s, "", false
	}
	last := parts[len(parts)-1]
	return s[:len(s)-len(last)-1], last, true
}

// stripComments removes both single-line (//) and block (/* */) comments from WGSL source.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

// stripLineComments removes single-line // comments.
func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// stripBlockComments removes block comments, which may nest in WGSL.
func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i++
				continue
			}
			if source[i] == '*' && source[i+1] == '/' && depth > 0 {
				depth--
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// isVertexInputStruct reports whether the struct has at least one @location field and no
// @builtin fields, which separates vertex inputs from vertex outputs.
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// buildVertexLayout packs the @location fields of a vertex input struct in declaration order.
func buildVertexLayout(ps parsedStruct) (VertexLayout, bool) {
	layout := VertexLayout{Name: ps.name}
	offset := uint64(0)
	for _, f := range ps.fields {
		info, ok := wgslVertexFormatMap[f.typeName]
		if !ok || f.location < 0 {
			return VertexLayout{}, false
		}
		layout.Attributes = append(layout.Attributes, VertexAttribute{
			Location: uint32(f.location),
			Format:   info.format,
			Offset:   offset,
		})
		offset += info.size
	}
	layout.Stride = offset
	return layout, true
}

// splitAtTopLevelCommas splits s at commas that are not nested inside angle brackets.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
