package shader

import (
	"fmt"
	"os"
)

// ShaderType identifies the pipeline stage a shader provides.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// String returns the stage name.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// shader is the implementation of the Shader interface.
// It holds the pre-processed source and the metadata parsed from it.
type shader struct {
	key        string
	path       string
	rawSource  string
	source     string
	shaderType ShaderType
	entryPoint string
	bindings   []Binding
	vertex     []VertexLayout

	includes map[string]string
	defines  map[string]uint32

	pp PreProcessor
}

// Shader defines the interface for a loaded and pre-processed WGSL shader. It exposes the shader's
// key, processed source, entry point, resource bindings and vertex layouts needed to build a pipeline.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for labels and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Path returns the file the shader was loaded from, or an empty string for in-memory sources.
	//
	// Returns:
	//   - string: the source path
	Path() string

	// Source retrieves the pre-processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source code with all annotations expanded
	Source() string

	// ShaderType returns the pipeline stage of the shader.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the entry point function name for this shader's stage.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// Bindings returns every resource binding declared by the shader, sorted by group then binding.
	//
	// Returns:
	//   - []Binding: the parsed bindings
	Bindings() []Binding

	// Binding looks up a single declared binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - Binding: the declaration
	//   - bool: false if the shader does not declare it
	Binding(group, binding int) (Binding, bool)

	// VertexLayouts returns the vertex buffer layouts parsed from vertex input structs.
	// Always empty for fragment shaders.
	//
	// Returns:
	//   - []VertexLayout: one layout per vertex input struct
	VertexLayouts() []VertexLayout

	// Declarations returns the slots annotations expanded by the pre-processor.
	//
	// Returns:
	//   - []Annotation: the expanded annotations in source order
	Declarations() []Annotation

	// Reload re-reads the shader from its path and pre-processes it again with the same includes and defines.
	// Shaders created from in-memory source are re-processed from their original source.
	//
	// Returns:
	//   - Shader: a new shader instance
	//   - error: ErrCompileFailure (wrapped) or a file error
	Reload() (Shader, error)
}

var _ Shader = &shader{}

// NewShader loads a WGSL shader from disk and pre-processes it.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the pipeline stage the shader provides
//   - sourcePath: the file path to read WGSL source from
//   - options: functional options supplying includes and define values
//
// Returns:
//   - Shader: the loaded shader
//   - error: a read error, or ErrCompileFailure (wrapped) if pre-processing fails
func NewShader(key string, shaderType ShaderType, sourcePath string, options ...ShaderBuilderOption) (Shader, error) {
	if sourcePath == "" {
		return nil, fmt.Errorf("shader %s: empty source path", key)
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("shader %s: failed to read source file %q: %w", key, sourcePath, err)
	}
	s := newShader(key, shaderType, options...)
	s.path = sourcePath
	if err := s.parseSource(string(data)); err != nil {
		return nil, err
	}
	return s, nil
}

// NewShaderFromSource creates a shader from in-memory WGSL source, typically an embedded asset.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the pipeline stage the shader provides
//   - source: the raw WGSL source
//   - options: functional options supplying includes and define values
//
// Returns:
//   - Shader: the processed shader
//   - error: ErrCompileFailure (wrapped) if pre-processing fails
func NewShaderFromSource(key string, shaderType ShaderType, source string, options ...ShaderBuilderOption) (Shader, error) {
	s := newShader(key, shaderType, options...)
	if err := s.parseSource(source); err != nil {
		return nil, err
	}
	return s, nil
}

func newShader(key string, shaderType ShaderType, options ...ShaderBuilderOption) *shader {
	s := &shader{
		key:        key,
		shaderType: shaderType,
		includes:   make(map[string]string),
		defines:    make(map[string]uint32),
	}
	for _, opt := range options {
		opt(s)
	}
	s.pp = NewPreProcessor(s.includes, s.defines)
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Path() string {
	return s.path
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) Bindings() []Binding {
	return s.bindings
}

func (s *shader) Binding(group, binding int) (Binding, bool) {
	for _, b := range s.bindings {
		if b.Group == group && b.Binding == binding {
			return b, true
		}
	}
	return Binding{}, false
}

func (s *shader) VertexLayouts() []VertexLayout {
	return s.vertex
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

func (s *shader) Reload() (Shader, error) {
	opts := []ShaderBuilderOption{WithIncludes(s.includes), WithDefines(s.defines)}
	if s.path != "" {
		return NewShader(s.key, s.shaderType, s.path, opts...)
	}
	return NewShaderFromSource(s.key, s.shaderType, s.rawSource, opts...)
}

// parseSource pre-processes the raw source and extracts the entry point, bindings and,
// for vertex shaders, vertex layouts.
func (s *shader) parseSource(raw string) error {
	processed, err := s.pp.Process(raw)
	if err != nil {
		return fmt.Errorf("%w: shader %s: %w", ErrCompileFailure, s.key, err)
	}
	s.rawSource = raw
	s.source = processed
	s.entryPoint = parseEntryPoint(processed, s.shaderType)
	if s.entryPoint == "" {
		return fmt.Errorf("%w: shader %s: no @%s entry point", ErrCompileFailure, s.key, s.shaderType)
	}
	s.bindings = parseBindings(processed)
	if s.shaderType == ShaderTypeVertex {
		s.vertex = parseVertexLayouts(processed)
	}
	return nil
}
