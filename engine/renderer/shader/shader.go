package shader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
)

//go:embed assets/*.wgsl
var assets embed.FS

// Paths of the built-in shaders, resolved against the embedded assets or an override directory.
const (
	ShadowDepthPath  = "assets/shadow_depth.wgsl"
	GaussianBlurPath = "assets/gaussian_blur.wgsl"
	LitPath          = "assets/lit.wgsl"
)

const (
	defaultVertexEntry   = "vs_main"
	defaultFragmentEntry = "fs_main"
)

// shader is the implementation of the Shader interface.
type shader struct {
	key           string
	path          string
	source        string
	overrideDir   string
	vertexEntry   string
	fragmentEntry string
	declarations  []Annotation
}

// Shader is a pre-processed WGSL source with its binding declarations.
type Shader interface {
	// Key returns the unique key of the shader, used as the module label.
	Key() string

	// Path returns the path the source was loaded from.
	Path() string

	// Source returns the pre-processed WGSL source.
	Source() string

	// VertexEntry returns the vertex stage entry point name.
	VertexEntry() string

	// FragmentEntry returns the fragment stage entry point name.
	FragmentEntry() string

	// Declarations returns the @oxy:group declarations found in the source, in source order.
	//
	// Returns:
	//   - []Annotation: the binding declarations
	Declarations() []Annotation

	// Groups returns the distinct bind group indices declared by the shader in ascending order.
	//
	// Returns:
	//   - []int: the declared group indices
	Groups() []int

	// BindGroupLayoutDescriptor derives the layout of one bind group from the declarations.
	// Uniform structs become uniform buffer entries sized to the struct; textures become
	// unfilterable float textures.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - gpu.BindGroupLayoutDescriptor: the layout, with entries sorted by binding
	BindGroupLayoutDescriptor(group int) gpu.BindGroupLayoutDescriptor
}

var _ Shader = &shader{}

// NewShader loads, pre-processes and returns the shader at path. The path is looked up in the
// override directory first (if one is set) and then in the embedded assets.
// A missing file or a malformed annotation is fatal and panics.
//
// Parameters:
//   - key: the unique key for this shader
//   - path: the source path, e.g. ShadowDepthPath
//   - opts: a variadic list of ShaderBuilderOption functions
//
// Returns:
//   - Shader: the loaded shader
func NewShader(key, path string, opts ...ShaderBuilderOption) Shader {
	if path == "" {
		common.Fatalf("shader: %s must have a valid source path", key)
	}
	s := &shader{
		key:           key,
		path:          path,
		vertexEntry:   defaultVertexEntry,
		fragmentEntry: defaultFragmentEntry,
	}
	for _, opt := range opts {
		opt(s)
	}

	raw, err := LoadSource(path, s.overrideDir)
	if err != nil {
		common.Fatalf("shader: %s: %v", key, err)
	}
	pp := NewPreProcessor()
	src, err := pp.Process(raw)
	if err != nil {
		common.Fatalf("shader: %s (%s): %v", key, path, err)
	}
	s.source = src
	s.declarations = slices.Clone(pp.Declarations())

	common.Logger().Debug("shader loaded", "key", key, "path", path, "bindings", len(s.declarations))
	return s
}

// LoadSource reads raw WGSL from overrideDir/path if that file exists, otherwise from the
// embedded assets.
//
// Parameters:
//   - path: the source path
//   - overrideDir: an on-disk directory checked first, empty to use only the embedded assets
//
// Returns:
//   - string: the raw source
//   - error: an error if the file exists in neither location or cannot be read
func LoadSource(path, overrideDir string) (string, error) {
	if overrideDir != "" {
		data, err := os.ReadFile(filepath.Join(overrideDir, filepath.FromSlash(path)))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read shader override %q: %w", path, err)
		}
	}
	data, err := assets.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read shader %q: %w", path, err)
	}
	return string(data), nil
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

func (s *shader) VertexEntry() string {
	return s.vertexEntry
}

func (s *shader) FragmentEntry() string {
	return s.fragmentEntry
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

func (s *shader) Groups() []int {
	var groups []int
	for _, d := range s.declarations {
		if !slices.Contains(groups, *d.Group) {
			groups = append(groups, *d.Group)
		}
	}
	sort.Ints(groups)
	return groups
}

func (s *shader) BindGroupLayoutDescriptor(group int) gpu.BindGroupLayoutDescriptor {
	desc := gpu.BindGroupLayoutDescriptor{
		Label: fmt.Sprintf("%s_group%d", s.key, group),
	}
	for _, d := range s.declarations {
		if *d.Group != group {
			continue
		}
		entry := gpu.BindGroupLayoutEntry{Binding: uint32(*d.Binding)}
		switch d.Args[0] {
		case AnnotationArgSpaceUniform:
			entry.Visibility = gpu.ShaderStageVertex | gpu.ShaderStageFragment
			entry.Type = gpu.BindingTypeUniformBuffer
			entry.MinSize = UniformSize(d.Args[2])
		case AnnotationArgSpaceTexture:
			entry.Visibility = gpu.ShaderStageFragment
			entry.Type = gpu.BindingTypeUnfilterableTexture
		}
		desc.Entries = append(desc.Entries, entry)
	}
	sort.Slice(desc.Entries, func(i, j int) bool {
		return desc.Entries[i].Binding < desc.Entries[j].Binding
	})
	return desc
}
