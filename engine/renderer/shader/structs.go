package shader

// WGSL struct sources injected by @oxy:include. The byte layouts match the Go types that
// marshal into them: the shadow map light matrix, model.ModelData, shadow.CascadeInfo,
// blur.Params and scene.SceneData.

const lightCameraSource = `struct LightCamera {
    view_proj: mat4x4<f32>,
};`

const modelDataSource = `struct ModelData {
    world: mat4x4<f32>,
};`

const cascadeInfoSource = `struct CascadeInfo {
    lvpc: array<mat4x4<f32>, 3>,
    soft_shadow: u32,
    split0: f32,
    split1: f32,
    split2: f32,
};`

const blurParamsSource = `struct BlurParams {
    direction: vec2<f32>,
    _pad: vec2<f32>,
    weights: array<vec4<f32>, 2>,
};`

const sceneDataSource = `struct SceneData {
    view_proj: mat4x4<f32>,
    view: mat4x4<f32>,
    light_dir: vec4<f32>,    // xyz direction, w ambient
    light_color: vec4<f32>,  // rgb colour * intensity, w shadowed
};`

const vertexSource = `struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
};`

const quadVertexSource = `struct QuadVertex {
    @location(0) position: vec2<f32>,
    @location(1) uv: vec2<f32>,
};`

// registryEntry pairs a WGSL struct source with the type name emitted in group declarations.
type registryEntry struct {
	Source string
	Type   string
}

var structRegistry = map[AnnotationArg]registryEntry{
	AnnotationArgLightCamera: {Source: lightCameraSource, Type: "LightCamera"},
	AnnotationArgModelData:   {Source: modelDataSource, Type: "ModelData"},
	AnnotationArgCascadeInfo: {Source: cascadeInfoSource, Type: "CascadeInfo"},
	AnnotationArgBlurParams:  {Source: blurParamsSource, Type: "BlurParams"},
	AnnotationArgSceneData:   {Source: sceneDataSource, Type: "SceneData"},
	annotationArgVertex:      {Source: vertexSource, Type: "VertexInput"},
	annotationArgQuadVertex:  {Source: quadVertexSource, Type: "QuadVertex"},
}

// structSizes holds the uniform buffer size of every struct that can be bound as a uniform.
var structSizes = map[AnnotationArg]uint64{
	AnnotationArgLightCamera: 64,
	AnnotationArgModelData:   64,
	AnnotationArgCascadeInfo: 208,
	AnnotationArgBlurParams:  48,
	AnnotationArgSceneData:   160,
}

// UniformSize returns the byte size of a uniform struct type, or 0 if the type is not bindable.
//
// Parameters:
//   - arg: the struct type
//
// Returns:
//   - uint64: the uniform size in bytes
func UniformSize(arg AnnotationArg) uint64 {
	return structSizes[arg]
}
