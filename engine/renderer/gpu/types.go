package gpu

// CommandListType selects the queue a command list is recorded for.
type CommandListType int

const (
	// CommandListDirect records graphics, compute and copy commands.
	CommandListDirect CommandListType = iota
	// CommandListCompute records compute and copy commands.
	CommandListCompute
	// CommandListCopy records copy commands only.
	CommandListCopy
)

func (t CommandListType) String() string {
	switch t {
	case CommandListDirect:
		return "direct"
	case CommandListCompute:
		return "compute"
	case CommandListCopy:
		return "copy"
	}
	return "unknown"
}

// TextureFormat is the pixel format of a texture.
type TextureFormat int

const (
	TextureFormatUndefined TextureFormat = iota
	TextureFormatRGBA8Unorm
	TextureFormatBGRA8UnormSrgb
	TextureFormatRG32Float
	TextureFormatRGBA16Float
	TextureFormatDepth32Float
)

// IsDepth reports whether the format is a depth format.
func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth32Float
}

// BytesPerPixel returns the size of one texel, or 0 for undefined formats.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case TextureFormatRGBA8Unorm, TextureFormatBGRA8UnormSrgb, TextureFormatDepth32Float:
		return 4
	case TextureFormatRG32Float, TextureFormatRGBA16Float:
		return 8
	}
	return 0
}

// BufferUsage is a bit set describing how a buffer is bound.
type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageCopyDst
	BufferUsageCopySrc
)

// TextureUsage is a bit set describing how a texture is bound.
type TextureUsage uint32

const (
	TextureUsageRenderAttachment TextureUsage = 1 << iota
	TextureUsageTextureBinding
	TextureUsageCopyDst
	TextureUsageCopySrc
)

// ShaderStage is a bit set of shader stages a binding is visible to.
type ShaderStage uint32

const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
)

// BindingType is the kind of resource bound at a bind group layout slot.
type BindingType int

const (
	BindingTypeUniformBuffer BindingType = iota
	// BindingTypeTexture is a filterable float texture.
	BindingTypeTexture
	// BindingTypeUnfilterableTexture is a 32-bit float texture read with textureLoad. No
	// sampler binding exists; shaders clamp their own coordinates.
	BindingTypeUnfilterableTexture
)

// CompareFunction is used for depth testing.
type CompareFunction int

const (
	CompareFunctionLess CompareFunction = iota
	CompareFunctionLessEqual
	CompareFunctionAlways
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// FrontFace selects the winding order of front-facing triangles.
type FrontFace int

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

// BlendMode selects the colour blend equation of a pipeline.
type BlendMode int

const (
	// BlendModeOpaque overwrites the target.
	BlendModeOpaque BlendMode = iota
	// BlendModeAlpha blends with source alpha.
	BlendModeAlpha
)

// IndexFormat is the element type of an index buffer.
type IndexFormat int

const (
	IndexFormatUint32 IndexFormat = iota
	IndexFormatUint16
)

// LoadOp selects what happens to an attachment at the start of a render pass.
type LoadOp int

const (
	LoadOpClear LoadOp = iota
	LoadOpLoad
)

// VertexFormat is the type of a single vertex attribute.
type VertexFormat int

const (
	VertexFormatFloat32x2 VertexFormat = iota
	VertexFormatFloat32x3
	VertexFormatFloat32x4
)

// Size returns the size of the attribute in bytes.
func (f VertexFormat) Size() uint64 {
	switch f {
	case VertexFormatFloat32x2:
		return 8
	case VertexFormatFloat32x3:
		return 12
	case VertexFormatFloat32x4:
		return 16
	}
	return 0
}

// Color is an RGBA clear colour.
type Color struct {
	R, G, B, A float64
}

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

// TextureDescriptor describes a 2D texture to create.
type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Format TextureFormat
	Usage  TextureUsage
}

// ShaderModuleDescriptor holds WGSL source to compile.
type ShaderModuleDescriptor struct {
	Label  string
	Source string
}

// BindGroupLayoutEntry describes one binding slot of a layout.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Type       BindingType
	// MinSize is the minimum uniform buffer size in bytes; 0 disables the check.
	MinSize uint64
}

// BindGroupLayoutDescriptor describes a bind group layout.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry binds exactly one of Buffer or Texture to a slot.
type BindGroupEntry struct {
	Binding uint32
	Buffer  Buffer
	Texture TextureView
}

// BindGroupDescriptor describes a bind group to create against a layout.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// VertexAttribute describes a single attribute within a vertex buffer.
type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

// VertexBufferLayout describes the stride and attributes of one vertex buffer slot.
type VertexBufferLayout struct {
	Stride     uint64
	Attributes []VertexAttribute
}

// RenderPipelineDescriptor is the backend-neutral description of a graphics pipeline.
type RenderPipelineDescriptor struct {
	Label            string
	Module           ShaderModule
	VertexEntry      string
	FragmentEntry    string
	VertexBuffers    []VertexBufferLayout
	BindGroupLayouts []BindGroupLayout

	ColorFormats []TextureFormat
	DepthFormat  TextureFormat

	DepthTestEnabled    bool
	DepthWriteEnabled   bool
	DepthCompare        CompareFunction
	DepthBias           int32
	DepthBiasSlopeScale float32

	CullMode  CullMode
	FrontFace FrontFace
	Blend     BlendMode
}

// RenderPassDescriptor describes the load/clear behavior of a render pass.
type RenderPassDescriptor struct {
	Label       string
	ColorLoadOp LoadOp
	ClearColor  Color
	DepthLoadOp LoadOp
	ClearDepth  float32
}

// FramebufferDescriptor binds concrete attachments of a fixed size.
type FramebufferDescriptor struct {
	Label        string
	Width        uint32
	Height       uint32
	ColorTargets []Texture
	DepthTarget  Texture
}
