package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// wgslVertexFormatMap maps WGSL type names to their vertex format and byte size
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {VertexFormatFloat32, 4},
	"vec2f":     {VertexFormatFloat32x2, 8},
	"vec2<f32>": {VertexFormatFloat32x2, 8},
	"vec3f":     {VertexFormatFloat32x3, 12},
	"vec3<f32>": {VertexFormatFloat32x3, 12},
	"vec4f":     {VertexFormatFloat32x4, 16},
	"vec4<f32>": {VertexFormatFloat32x4, 16},
	"u32":       {VertexFormatUint32, 4},
	"vec2u":     {VertexFormatUint32x2, 8},
	"vec2<u32>": {VertexFormatUint32x2, 8},
	"vec4u":     {VertexFormatUint32x4, 16},
	"vec4<u32>": {VertexFormatUint32x4, 16},
	"i32":       {VertexFormatSint32, 4},
	"vec2i":     {VertexFormatSint32x2, 8},
	"vec2<i32>": {VertexFormatSint32x2, 8},
	"vec4i":     {VertexFormatSint32x4, 16},
	"vec4<i32>": {VertexFormatSint32x4, 16},
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// constU32Regex matches module-scope u32 constants: const NAME: u32 = 16u;
	constU32Regex = regexp.MustCompile(`const\s+(\w+)\s*:\s*u32\s*=\s*(\d+)u?\s*;`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> frame: FrameUniform;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseEntryPoint extracts the entry point function name for the given shader type.
// Returns an empty string if no matching entry point attribute is found.
func parseEntryPoint(source string, shaderType ShaderType) string {
	cleaned := stripComments(source)

	var re *regexp.Regexp
	switch shaderType {
	case ShaderTypeVertex:
		re = vertexEntryRegex
	case ShaderTypeFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// parseConstants collects module-scope u32 constants so that fixed-size arrays sized by a
// named constant can be laid out.
func parseConstants(source string) map[string]uint64 {
	consts := make(map[string]uint64)
	for _, m := range constU32Regex.FindAllStringSubmatch(source, -1) {
		if v, err := strconv.ParseUint(m[2], 10, 64); err == nil {
			consts[m[1]] = v
		}
	}
	return consts
}

// parseBindings extracts all @group(N) @binding(M) declarations from WGSL source, sorted by group
// then binding. Buffer bindings get MinSize resolved from the struct definitions in the source.
//
// Parameters:
//   - source: the WGSL source code string
//
// Returns:
//   - []Binding: every resource declaration found
func parseBindings(source string) []Binding {
	cleaned := stripComments(source)
	consts := parseConstants(cleaned)
	structSizes := computeStructSizes(parseStructBlocks(cleaned), consts)

	matches := bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1)
	bindings := make([]Binding, 0, len(matches))
	for _, match := range matches {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		b := Binding{
			Group:    group,
			Binding:  binding,
			Name:     strings.TrimSpace(match[4]),
			TypeName: strings.TrimSpace(match[5]),
		}
		b.Kind = classifyResource(strings.TrimSpace(match[3]), b.TypeName)
		if b.Kind == ResourceKindUniformBuffer || b.Kind == ResourceKindStorageBuffer {
			if layout, ok := resolveTypeLayout(b.TypeName, structSizes, consts); ok {
				b.MinSize = layout.size
			}
		}
		bindings = append(bindings, b)
	}

	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].Group != bindings[j].Group {
			return bindings[i].Group < bindings[j].Group
		}
		return bindings[i].Binding < bindings[j].Binding
	})
	return bindings
}

// parseVertexLayouts extracts vertex buffer layouts from WGSL source code.
// Only pure vertex input structs (@location fields, no @builtin fields) are considered.
// Structs containing unrecognized attribute types are skipped.
func parseVertexLayouts(source string) []VertexLayout {
	var layouts []VertexLayout
	for _, ps := range parseStructBlocks(stripComments(source)) {
		if !isVertexInputStruct(ps) {
			continue
		}
		if layout, ok := buildVertexLayout(ps); ok {
			layouts = append(layouts, layout)
		}
	}
	return layouts
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields including @location and @builtin attributes
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

// parseStructFields parses the body of a struct block into individual fields.
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field := parsedField{location: -1}
		if builtinRegex.MatchString(line) {
			field.isBuiltin = true
		}
		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			if loc, err := strconv.Atoi(locMatch[1]); err == nil {
				field.location = loc
			}
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])
		fields = append(fields, field)
	}

	return fields
}
