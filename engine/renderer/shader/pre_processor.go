// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader source for
// @oxy: annotations and replaces them with injected struct sources, constants, or generated
// texture slot bindings. Includes and define values are supplied per pre-processor, so the
// same shader file can be specialized for different grid sizes and texture counts.
package shader

import (
	"fmt"
	"maps"
	"strings"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// includes maps include names to the WGSL source injected by @oxy:include.
	includes map[string]string

	// defines maps constant names to the values emitted by @oxy:define.
	defines map[string]uint32

	// declarations accumulates slots annotations during a Process call.
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source containing @oxy: annotations.
type PreProcessor interface {
	// Process replaces every @oxy: annotation in source with its generated WGSL.
	// The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: an error if an annotation is malformed or references an unknown include or define
	Process(source string) (string, error)

	// Declarations returns the slots annotations collected by the most recent Process call.
	//
	// Returns:
	//   - []Annotation: the declarations in source order
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the given include sources and define values.
// Both maps are copied.
//
// Parameters:
//   - includes: include name to WGSL source
//   - defines: constant name to value
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(includes map[string]string, defines map[string]uint32) PreProcessor {
	p := &preProcessor{
		includes: make(map[string]string, len(includes)),
		defines:  make(map[string]uint32, len(defines)),
	}
	maps.Copy(p.includes, includes)
	maps.Copy(p.defines, defines)
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			src, ok := p.includes[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", a.Line, a.Args[0])
			}
			out = append(out, src)
		case annotationTypeDefine:
			v, ok := p.defines[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: no value supplied for @oxy:define %s", a.Line, a.Args[0])
			}
			out = append(out, fmt.Sprintf("const %s: u32 = %du;", a.Args[0], v))
		case AnnotationTypeSlots:
			count, ok := p.defines[DefineTextureCount]
			if !ok || count == 0 {
				return "", fmt.Errorf("line %d: @oxy:slots requires a non-zero %s define", a.Line, DefineTextureCount)
			}
			a.Count = int(count)
			out = append(out, generateSlots(*a))
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", a.Line, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

// generateSlots emits one texture binding per slot and the sample_slot selector.
// textureSampleLevel carries no uniform control flow requirement, so the switch may diverge per fragment.
func generateSlots(a Annotation) string {
	prefix, samplerVar := a.Args[0], a.Args[1]

	var sb strings.Builder
	for i := 0; i < a.Count; i++ {
		fmt.Fprintf(&sb, "@group(%d) @binding(%d) var %s_%d: texture_2d<f32>;\n", *a.Group, *a.Binding+i, prefix, i)
	}
	sb.WriteString("\nfn sample_slot(slot: u32, uv: vec2<f32>) -> vec4<f32> {\n")
	sb.WriteString("    var color = vec4<f32>(1.0, 0.0, 1.0, 1.0);\n")
	sb.WriteString("    switch slot {\n")
	for i := 0; i < a.Count; i++ {
		fmt.Fprintf(&sb, "        case %du: { color = textureSampleLevel(%s_%d, %s, uv, 0.0); }\n", i, prefix, i, samplerVar)
	}
	sb.WriteString("        default: {}\n")
	sb.WriteString("    }\n")
	sb.WriteString("    return color;\n")
	sb.WriteString("}")
	return sb.String()
}
