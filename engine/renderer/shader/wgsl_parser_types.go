package shader

// VertexFormat identifies the component layout of a single vertex attribute.
type VertexFormat int

const (
	VertexFormatUndefined VertexFormat = iota
	VertexFormatFloat32
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatUint32
	VertexFormatUint32x2
	VertexFormatUint32x4
	VertexFormatSint32
	VertexFormatSint32x2
	VertexFormatSint32x4
)

// VertexAttribute describes one @location field of a vertex input struct.
type VertexAttribute struct {
	Location uint32
	Format   VertexFormat
	Offset   uint64
}

// VertexLayout describes a tightly packed, per-vertex buffer derived from a vertex input struct.
type VertexLayout struct {
	// Name is the WGSL struct name the layout was parsed from.
	Name       string
	Stride     uint64
	Attributes []VertexAttribute
}

// ResourceKind classifies a bound resource declared in a shader.
type ResourceKind int

const (
	ResourceKindUnknown ResourceKind = iota
	ResourceKindUniformBuffer
	ResourceKindStorageBuffer
	ResourceKindSampler
	ResourceKindTexture2D
	ResourceKindTexture2DArray
)

// String returns the lowercase name of the resource kind.
func (k ResourceKind) String() string {
	switch k {
	case ResourceKindUniformBuffer:
		return "uniform"
	case ResourceKindStorageBuffer:
		return "storage"
	case ResourceKindSampler:
		return "sampler"
	case ResourceKindTexture2D:
		return "texture_2d"
	case ResourceKindTexture2DArray:
		return "texture_2d_array"
	default:
		return "unknown"
	}
}

// Binding is a single @group(N) @binding(M) declaration parsed from shader source.
type Binding struct {
	Group   int
	Binding int
	Name    string
	Kind    ResourceKind
	// TypeName is the declared WGSL type, e.g. "FrameUniform" or "texture_2d<f32>".
	TypeName string
	// MinSize is the resolved byte size of buffer bindings, 0 when it could not be resolved.
	MinSize uint64
}

// vertexFormatInfo holds a vertex format and its byte size for offset calculation
type vertexFormatInfo struct {
	format VertexFormat
	size   uint64
}

// wgslTypeLayout holds the byte size and alignment for a WGSL type.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}
