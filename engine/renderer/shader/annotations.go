// annotations.go defines the annotation types and parser for the Oxy WGSL shader pre-processor.
// Annotations are single-line WGSL comments prefixed with @oxy: that inject shared struct
// sources, compile-time constants and generated texture slot bindings.
package shader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects a registered WGSL source fragment at the annotation site.
	//
	// Syntax: //@oxy:include <name>
	//
	// Example: //@oxy:include frame_uniform
	annotationTypeInclude AnnotationType = "include"

	// annotationTypeDefine emits a module-scope u32 constant whose value is supplied when the
	// shader is created. Missing values are an error.
	//
	// Syntax: //@oxy:define <NAME>
	//
	// Example: //@oxy:define GRID_LENGTH
	annotationTypeDefine AnnotationType = "define"

	// AnnotationTypeSlots expands into one texture_2d binding per texture slot, starting at the
	// given binding, plus a sample_slot(slot, uv) function that selects among them with a switch.
	// The slot count is the value of the TEXTURE_COUNT define.
	//
	// Syntax: //@oxy:slots <group> <first_binding> <var_prefix> <sampler_var>
	//
	// Example: //@oxy:slots 0 2 tile_tex tile_sampler
	AnnotationTypeSlots AnnotationType = "slots"
)

// Well known define names shared by the grid shaders and the code that builds them.
const (
	DefineGridLength     = "GRID_LENGTH"
	DefineTextureCount   = "TEXTURE_COUNT"
	DefinePackedElements = "PACKED_ELEMENTS"
	DefineCellCoordFrag  = "CELL_COORD_FRAG"
)

// identRegex matches a valid WGSL identifier.
var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Annotation represents a single parsed @oxy: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include: [0] = include name
	//   - define:  [0] = constant name
	//   - slots:   [0] = texture variable prefix, [1] = sampler variable
	Args []string

	// Line is the 1-based line number in the original WGSL source. Used for error reporting.
	Line int

	// Group is the @group index for slots annotations. Nil otherwise.
	Group *int

	// Binding is the first @binding index for slots annotations. Nil otherwise.
	Binding *int

	// Count is the number of slots generated, filled in by the pre-processor.
	Count int
}

// parseAnnotation attempts to parse a single line of WGSL source as an @oxy: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		return &Annotation{Type: annotationTypeInclude, Args: args[1:], Line: lineNum}, nil
	case annotationTypeDefine:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy define annotation requires exactly one argument", lineNum)
		}
		if !identRegex.MatchString(args[1]) {
			return nil, fmt.Errorf("line %d: invalid constant name %q in @oxy define annotation", lineNum, args[1])
		}
		return &Annotation{Type: annotationTypeDefine, Args: args[1:], Line: lineNum}, nil
	case AnnotationTypeSlots:
		if len(args) != 5 {
			return nil, fmt.Errorf("line %d: @oxy slots annotation requires four arguments (group, first binding, texture prefix, sampler)", lineNum)
		}
		group, err := strconv.Atoi(args[1])
		if err != nil || group < 0 {
			return nil, fmt.Errorf("line %d: invalid group number %q in @oxy slots annotation", lineNum, args[1])
		}
		binding, err := strconv.Atoi(args[2])
		if err != nil || binding < 0 {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @oxy slots annotation", lineNum, args[2])
		}
		for _, name := range args[3:] {
			if !identRegex.MatchString(name) {
				return nil, fmt.Errorf("line %d: invalid identifier %q in @oxy slots annotation", lineNum, name)
			}
		}
		return &Annotation{
			Type:    AnnotationTypeSlots,
			Args:    args[3:],
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
