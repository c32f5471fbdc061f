package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks a line of WGSL source as an engine annotation.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of @oxy annotation.
type AnnotationType string

const (
	// annotationTypeInclude injects a registered WGSL struct definition.
	// Syntax: @oxy:include <struct>
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup declares a resource binding and generates its WGSL declaration.
	// Syntax: @oxy:group <group> <binding> <space> <name> <type>
	AnnotationTypeBindingGroup AnnotationType = "group"
)

// Annotation is one parsed @oxy annotation.
type Annotation struct {
	// Type is the annotation kind.
	Type AnnotationType

	// Args holds the non-numeric arguments. For include: [struct]. For group: [space, name, type].
	Args []AnnotationArg

	// Line is the 1-based source line the annotation was found on.
	Line int

	// Group and Binding are set for group annotations only.
	Group   *int
	Binding *int
}

// AnnotationArg is a single annotation argument token.
type AnnotationArg string

// Struct types available to @oxy:include and as @oxy:group uniform types.
const (
	AnnotationArgLightCamera AnnotationArg = "light_camera"
	AnnotationArgModelData   AnnotationArg = "model_data"
	AnnotationArgCascadeInfo AnnotationArg = "cascade_info"
	AnnotationArgBlurParams  AnnotationArg = "blur_params"
	AnnotationArgSceneData   AnnotationArg = "scene_data"
	annotationArgVertex      AnnotationArg = "vertex"
	annotationArgQuadVertex  AnnotationArg = "quad_vertex"

	// annotationArgTexture2D is the only type accepted in the texture space.
	annotationArgTexture2D AnnotationArg = "texture_2d"
)

// Binding spaces accepted by @oxy:group.
const (
	// AnnotationArgSpaceUniform binds a registered struct as a uniform buffer.
	AnnotationArgSpaceUniform AnnotationArg = "uniform"
	// AnnotationArgSpaceTexture binds an unfilterable 2D float texture read with textureLoad.
	AnnotationArgSpaceTexture AnnotationArg = "texture"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgLightCamera,
	AnnotationArgModelData,
	AnnotationArgCascadeInfo,
	AnnotationArgBlurParams,
	AnnotationArgSceneData,
	annotationArgVertex,
	annotationArgQuadVertex,
}

var validSpaces = []AnnotationArg{
	AnnotationArgSpaceUniform,
	AnnotationArgSpaceTexture,
}

// parseAnnotation parses a single line of WGSL. Lines without the annotation prefix return
// (nil, nil).
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group annotation requires exactly five arguments (group, binding, space, name, type)", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil || groupInt < 0 {
			return nil, fmt.Errorf("line %d: invalid group number %q in @oxy group annotation", lineNum, args[1])
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil || bindingInt < 0 {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @oxy group annotation", lineNum, args[2])
		}
		space := AnnotationArg(args[3])
		if !slices.Contains(validSpaces, space) {
			return nil, fmt.Errorf("line %d: unknown binding space %q in @oxy group annotation", lineNum, args[3])
		}
		typeArg := AnnotationArg(args[5])
		switch space {
		case AnnotationArgSpaceUniform:
			if _, ok := structSizes[typeArg]; !ok {
				return nil, fmt.Errorf("line %d: %q cannot be bound as a uniform", lineNum, typeArg)
			}
		case AnnotationArgSpaceTexture:
			if typeArg != annotationArgTexture2D {
				return nil, fmt.Errorf("line %d: unsupported texture type %q", lineNum, typeArg)
			}
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{space, AnnotationArg(args[4]), typeArg},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	}
	return nil, fmt.Errorf("line %d: unknown @oxy annotation %q", lineNum, args[0])
}
