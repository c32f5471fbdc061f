package shader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShader_EmbeddedAssets(t *testing.T) {
	tests := []struct {
		path   string
		groups []int
	}{
		{ShadowDepthPath, []int{0, 1}},
		{GaussianBlurPath, []int{0, 1}},
		{LitPath, []int{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			s := NewShader("test", tt.path)
			assert.Equal(t, tt.groups, s.Groups())
			assert.NotContains(t, s.Source(), annotationPrefix)
			assert.Equal(t, "vs_main", s.VertexEntry())
			assert.Equal(t, "fs_main", s.FragmentEntry())
		})
	}
}

func TestShader_BindGroupLayoutDescriptor(t *testing.T) {
	s := NewShader("lit", LitPath)

	desc := s.BindGroupLayoutDescriptor(2)
	assert.Equal(t, "lit_group2", desc.Label)
	require.Len(t, desc.Entries, 4)
	assert.Equal(t, gpu.BindingTypeUniformBuffer, desc.Entries[0].Type)
	assert.Equal(t, uint64(208), desc.Entries[0].MinSize)
	for i := 1; i < 4; i++ {
		assert.Equal(t, uint32(i), desc.Entries[i].Binding)
		assert.Equal(t, gpu.BindingTypeUnfilterableTexture, desc.Entries[i].Type)
		assert.Equal(t, gpu.ShaderStageFragment, desc.Entries[i].Visibility)
	}

	assert.Empty(t, s.BindGroupLayoutDescriptor(7).Entries)
}

func TestPreProcessor_Process(t *testing.T) {
	src := strings.Join([]string{
		"@oxy:include model_data",
		"@oxy:include model_data",
		"@oxy:group 1 0 uniform model model_data",
		"@oxy:group 1 1 texture tex texture_2d",
		"fn f() {}",
	}, "\n")

	pp := NewPreProcessor()
	out, err := pp.Process(src)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "struct ModelData"))
	assert.Contains(t, out, "@group(1) @binding(0) var<uniform> model: ModelData;")
	assert.Contains(t, out, "@group(1) @binding(1) var tex: texture_2d<f32>;")
	assert.Contains(t, out, "fn f() {}")
	require.Len(t, pp.Declarations(), 2)
	assert.Equal(t, 3, pp.Declarations()[0].Line)
}

func TestPreProcessor_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", "@oxy:"},
		{"unknown annotation", "@oxy:define FOO"},
		{"unknown include", "@oxy:include nope"},
		{"missing args", "@oxy:group 0 0 uniform light"},
		{"bad group", "@oxy:group x 0 uniform light light_camera"},
		{"negative binding", "@oxy:group 0 -1 uniform light light_camera"},
		{"unknown space", "@oxy:group 0 0 storage light light_camera"},
		{"non uniform struct", "@oxy:group 0 0 uniform v vertex"},
		{"bad texture type", "@oxy:group 0 0 texture t texture_3d"},
		{"duplicate slot", "@oxy:group 0 0 uniform a light_camera\n@oxy:group 0 0 uniform b model_data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPreProcessor().Process(tt.src)
			assert.Error(t, err)
		})
	}
}

func TestLoadSource_Override(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	custom := "@oxy:include light_camera\n@oxy:group 0 0 uniform light light_camera\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "shadow_depth.wgsl"), []byte(custom), 0o644))

	src, err := LoadSource(ShadowDepthPath, dir)
	require.NoError(t, err)
	assert.Equal(t, custom, src)

	// files missing from the override directory fall back to the embedded copy
	src, err = LoadSource(GaussianBlurPath, dir)
	require.NoError(t, err)
	assert.Contains(t, src, "fs_main")

	_, err = LoadSource("assets/missing.wgsl", dir)
	assert.Error(t, err)
}

func TestNewShader_PanicsOnMissingSource(t *testing.T) {
	assert.Panics(t, func() { NewShader("missing", "assets/missing.wgsl") })
	assert.PanicsWithValue(t, "shader: empty must have a valid source path", func() { NewShader("empty", "") })
}

func TestWithEntryPoints(t *testing.T) {
	s := NewShader("blur", GaussianBlurPath, WithEntryPoints("", "fs_other"))
	assert.Equal(t, "vs_main", s.VertexEntry())
	assert.Equal(t, "fs_other", s.FragmentEntry())
}
