package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadlessDevice_CreateBindGroupValidatesLayout(t *testing.T) {
	dev := NewHeadlessDevice()
	layout := dev.CreateBindGroupLayout(BindGroupLayoutDescriptor{
		Label: "blur_src_layout",
		Entries: []BindGroupLayoutEntry{
			{Binding: 0, Visibility: ShaderStageFragment, Type: BindingTypeUniformBuffer, MinSize: 16},
			{Binding: 1, Visibility: ShaderStageFragment, Type: BindingTypeUnfilterableTexture},
		},
	})
	buf := dev.CreateBuffer(BufferDescriptor{Label: "params", Size: 16, Usage: BufferUsageUniform})
	small := dev.CreateBuffer(BufferDescriptor{Label: "small", Size: 8, Usage: BufferUsageUniform})
	tex := dev.CreateTexture(TextureDescriptor{
		Label: "moments", Width: 4, Height: 4,
		Format: TextureFormatRG32Float, Usage: TextureUsageTextureBinding,
	})

	g := dev.CreateBindGroup(BindGroupDescriptor{
		Label:  "blur_src",
		Layout: layout,
		Entries: []BindGroupEntry{
			{Binding: 0, Buffer: buf},
			{Binding: 1, Texture: tex.View()},
		},
	})
	require.NotNil(t, g)
	assert.Equal(t, layout, g.Layout())

	tests := []struct {
		name    string
		entries []BindGroupEntry
		want    string
	}{
		{
			name:    "buffer in texture slot",
			entries: []BindGroupEntry{{Binding: 0, Buffer: buf}, {Binding: 1, Buffer: buf}},
			want:    `gpu: bind group "bad" slot 1 does not match layout "blur_src_layout"`,
		},
		{
			name:    "texture in uniform slot",
			entries: []BindGroupEntry{{Binding: 0, Texture: tex.View()}, {Binding: 1, Texture: tex.View()}},
			want:    `gpu: bind group "bad" slot 0 does not match layout "blur_src_layout"`,
		},
		{
			name:    "uniform below min size",
			entries: []BindGroupEntry{{Binding: 0, Buffer: small}, {Binding: 1, Texture: tex.View()}},
			want:    `gpu: bind group "bad" slot 0 does not match layout "blur_src_layout"`,
		},
		{
			name:    "wrong slot order",
			entries: []BindGroupEntry{{Binding: 1, Texture: tex.View()}, {Binding: 0, Buffer: buf}},
			want:    `gpu: bind group "bad" entry 0 binds slot 1, layout wants 0`,
		},
		{
			name:    "missing entry",
			entries: []BindGroupEntry{{Binding: 0, Buffer: buf}},
			want:    `gpu: bind group "bad" has 1 entries, layout "blur_src_layout" wants 2`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PanicsWithValue(t, tt.want, func() {
				dev.CreateBindGroup(BindGroupDescriptor{Label: "bad", Layout: layout, Entries: tt.entries})
			})
		})
	}
}
