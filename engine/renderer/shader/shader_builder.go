package shader

import "maps"

// ShaderBuilderOption is a functional option applied to a shader before its source is processed.
type ShaderBuilderOption func(*shader)

// WithInclude registers a WGSL source fragment injected by //@oxy:include <name>.
//
// Parameters:
//   - name: the include name used in the annotation
//   - source: the WGSL source to inject
//
// Returns:
//   - ShaderBuilderOption: a function that registers the include on a shader
func WithInclude(name, source string) ShaderBuilderOption {
	return func(s *shader) {
		s.includes[name] = source
	}
}

// WithIncludes registers several include sources at once.
func WithIncludes(includes map[string]string) ShaderBuilderOption {
	return func(s *shader) {
		maps.Copy(s.includes, includes)
	}
}

// WithDefine supplies the value emitted by //@oxy:define <name>.
//
// Parameters:
//   - name: the constant name
//   - value: the constant value
//
// Returns:
//   - ShaderBuilderOption: a function that registers the define on a shader
func WithDefine(name string, value uint32) ShaderBuilderOption {
	return func(s *shader) {
		s.defines[name] = value
	}
}

// WithDefines supplies several define values at once.
func WithDefines(defines map[string]uint32) ShaderBuilderOption {
	return func(s *shader) {
		maps.Copy(s.defines, defines)
	}
}
