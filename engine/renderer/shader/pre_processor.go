// pre_processor.go implements the WGSL pre-processor. It scans shader source for @oxy:
// annotations, replaces them with injected struct sources or generated binding declarations,
// and collects the binding declarations so bind group layouts can be derived from the shader
// instead of being written out by hand.
package shader

import (
	"fmt"
	"strings"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// declarations accumulates group annotations during a Process call.
	declarations []Annotation
}

// PreProcessor processes raw WGSL source containing @oxy: annotations.
type PreProcessor interface {
	// Process replaces @oxy:include annotations with the registered struct source and
	// @oxy:group annotations with generated @group/@binding declarations.
	// The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: an error if an annotation is malformed, duplicated or references an unknown type
	Process(source string) (string, error)

	// Declarations returns the group annotations collected during the last Process call,
	// in source order.
	//
	// Returns:
	//   - []Annotation: the declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	included := make(map[AnnotationArg]bool)
	bound := make(map[[2]int]int)

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
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			out = append(out, structRegistry[a.Args[0]].Source)
		case AnnotationTypeBindingGroup:
			slot := [2]int{*a.Group, *a.Binding}
			if prev, ok := bound[slot]; ok {
				return "", fmt.Errorf("line %d: group %d binding %d already declared on line %d", a.Line, slot[0], slot[1], prev)
			}
			bound[slot] = a.Line

			space, name, typ := a.Args[0], string(a.Args[1]), a.Args[2]
			switch space {
			case AnnotationArgSpaceUniform:
				out = append(out, fmt.Sprintf("@group(%d) @binding(%d) var<uniform> %s: %s;", slot[0], slot[1], name, structRegistry[typ].Type))
			case AnnotationArgSpaceTexture:
				out = append(out, fmt.Sprintf("@group(%d) @binding(%d) var %s: texture_2d<f32>;", slot[0], slot[1], name))
			}
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
