package shadow

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCube(t *testing.T, dev gpu.Device, name string, pos mgl32.Vec3) model.Model {
	t.Helper()
	m := model.NewModel(model.NewCube(1), model.WithName(name), model.WithPosition(pos))
	m.Upload(dev)
	return m
}

// shadowPass is the command sequence of one depth-moments pass drawing the named cubes.
func shadowPass(label string, cubes ...string) []gpu.Command {
	cmds := []gpu.Command{
		{Op: gpu.OpBeginRenderPass, Target: label + "_fb"},
		{Op: gpu.OpSetPipeline, Target: label + "_pipeline"},
		{Op: gpu.OpSetBindGroup, Target: label + "_light_f0", Index: 0},
	}
	for i, c := range cubes {
		cmds = append(cmds,
			gpu.Command{Op: gpu.OpSetBindGroup, Target: fmt.Sprintf("%s_obj%d_f0", label, i), Index: 1},
			gpu.Command{Op: gpu.OpSetVertexBuffer, Target: c + "_vb"},
			gpu.Command{Op: gpu.OpSetIndexBuffer, Target: c + "_ib"},
			gpu.Command{Op: gpu.OpDrawIndexed, Count: 36, Instances: 1},
		)
	}
	return append(cmds, gpu.Command{Op: gpu.OpEndRenderPass, Target: label + "_fb"})
}

// blurPasses is the command sequence of the horizontal and vertical blur over a shadow map's
// moments target in frame slot 0.
func blurPasses(label string) []gpu.Command {
	b := label + "_blur"
	quad := func(group, src, target string) []gpu.Command {
		return []gpu.Command{
			{Op: gpu.OpBeginRenderPass, Target: target},
			{Op: gpu.OpSetPipeline, Target: b + "_pipeline"},
			{Op: gpu.OpSetBindGroup, Target: b + group, Index: 0},
			{Op: gpu.OpSetBindGroup, Target: b + src, Index: 1},
			{Op: gpu.OpSetVertexBuffer, Target: label + "_quad_vb_f0"},
			{Op: gpu.OpSetIndexBuffer, Target: label + "_quad_ib_f0"},
			{Op: gpu.OpDrawIndexed, Count: 6, Instances: 1},
			{Op: gpu.OpEndRenderPass, Target: target},
		}
	}
	return append(quad("_h_f0", "_src0_f0", b+"_intermediate_fb_f0"),
		quad("_v_f0", "_intermediate_src_f0", b+"_target0")...)
}

func TestShadowMap_DrawRecordsDepthPass(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := renderer.NewRenderer(dev)
	a := newCube(t, dev, "a", mgl32.Vec3{})
	b := newCube(t, dev, "b", mgl32.Vec3{2, 0, 0})

	s := NewShadowMap(r, 64, 64, WithSoftShadow(false))
	s.Add(a)
	s.Add(b)

	require.NoError(t, r.BeginFrame(context.Background()))
	cmd := r.CommandList(gpu.CommandListDirect)
	cmd.BeginRenderPass(r.DefaultRenderPass(), r.DefaultFramebuffer())
	s.Draw(mgl32.Ident4())
	r.EndFrame()

	batches := dev.Submitted()
	require.Len(t, batches, 1)
	// the open default pass is closed before the depth pass begins
	want := append([]gpu.Command{
		{Op: gpu.OpBeginRenderPass, Target: "default_framebuffer"},
		{Op: gpu.OpEndRenderPass, Target: "default_framebuffer"},
	}, shadowPass("shadow_map", "a", "b")...)
	assert.Equal(t, want, batches[0])

	var objWrites []gpu.BufferWrite
	for _, w := range dev.Writes() {
		if w.Buffer == "shadow_map_light_b0_f0" || w.Buffer == "shadow_map_obj0_b0_f0" || w.Buffer == "shadow_map_obj1_b0_f0" {
			objWrites = append(objWrites, w)
		}
	}
	require.Len(t, objWrites, 3)
	for _, w := range objWrites {
		assert.Equal(t, common.Mat4Size, w.Size)
	}
}

func TestShadowMap_WritesLightMatrixAndWorld(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := renderer.NewRenderer(dev)
	m := newCube(t, dev, "cube", mgl32.Vec3{3, 4, 5})
	s := NewShadowMap(r, 8, 8, WithSoftShadow(false), WithLabel("sm"))
	s.Add(m)

	lvp := mgl32.Scale3D(2, 3, 4)
	require.NoError(t, r.BeginFrame(context.Background()))
	s.Draw(lvp)
	r.EndFrame()

	f := func(data []byte, i int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])) }
	light := dev.BufferContents(s.(*shadowMap).light.BufferAt(0, 0))
	assert.Equal(t, float32(2), f(light, 0))
	assert.Equal(t, float32(3), f(light, 5))

	obj := dev.BufferContents(s.(*shadowMap).drawables[0].object.BufferAt(0, 0))
	assert.Equal(t, float32(3), f(obj, 12))
	assert.Equal(t, float32(4), f(obj, 13))
	assert.Equal(t, float32(5), f(obj, 14))
}

func TestShadowMap_SoftShadowBlursMoments(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := renderer.NewRenderer(dev)
	s := NewShadowMap(r, 32, 32)
	s.Add(newCube(t, dev, "a", mgl32.Vec3{}))
	assert.True(t, s.SoftShadow())

	require.NoError(t, r.BeginFrame(context.Background()))
	s.Draw(mgl32.Ident4())
	r.EndFrame()

	want := append(shadowPass("shadow_map", "a"), blurPasses("shadow_map")...)
	assert.Equal(t, want, dev.Submitted()[0])
	assert.Equal(t, uint32(32), s.Blur().Width())
}

func TestShadowMap_CullingSkipsOutsideDrawables(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := renderer.NewRenderer(dev)
	inside := newCube(t, dev, "inside", mgl32.Vec3{})
	outside := newCube(t, dev, "outside", mgl32.Vec3{10, 0, 0})
	s := NewShadowMap(r, 8, 8, WithSoftShadow(false), WithCulling(true))
	s.Add(outside)
	s.Add(inside)

	require.NoError(t, r.BeginFrame(context.Background()))
	s.Draw(common.OrthoZO(-2, 2, -2, 2, -2, 2))
	r.EndFrame()

	var drawn []string
	for _, c := range dev.Submitted()[0] {
		if c.Op == gpu.OpSetVertexBuffer {
			drawn = append(drawn, c.Target)
		}
	}
	assert.Equal(t, []string{"inside_vb"}, drawn)
}

func TestShadowMap_AddRemove(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := renderer.NewRenderer(dev)
	a := newCube(t, dev, "a", mgl32.Vec3{})
	b := newCube(t, dev, "b", mgl32.Vec3{})
	s := NewShadowMap(r, 8, 8)

	s.Add(a)
	s.Add(b)
	s.Add(a)
	s.Add(nil)
	require.Len(t, s.Models(), 3)

	assert.True(t, s.Remove(a))
	assert.Equal(t, []Drawable{b, a}, s.Models())
	assert.True(t, s.Remove(a))
	assert.False(t, s.Remove(a))
	assert.Equal(t, []Drawable{b}, s.Models())
}

func TestShadowMap_TargetsAndRelease(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := renderer.NewRenderer(dev)
	require.NoError(t, r.BeginFrame(context.Background()))
	r.EndFrame()
	r.Present()
	m := newCube(t, dev, "a", mgl32.Vec3{})
	before := dev.LiveResources()

	s := NewShadowMap(r, 16, 8, WithLabel("sm"))
	assert.Equal(t, uint32(16), s.Width())
	assert.Equal(t, uint32(8), s.Height())
	fb := s.Framebuffer()
	require.Len(t, fb.ColorTargets(), 1)
	assert.Equal(t, MomentsFormat, fb.ColorTargets()[0].Format())
	assert.Equal(t, DepthFormat, fb.DepthTarget().Format())
	assert.Equal(t, "sm_moments", s.ShadowView().Texture().Label())

	s.Add(m)
	require.NoError(t, r.BeginFrame(context.Background()))
	s.Draw(mgl32.Ident4())
	r.EndFrame()
	r.Present()

	s.Release()
	assert.Equal(t, before, dev.LiveResources())
	assert.Empty(t, s.Models())
}

func TestNewShadowMap_Panics(t *testing.T) {
	r := renderer.NewRenderer(gpu.NewHeadlessDevice())
	assert.PanicsWithValue(t, "shadow: nil renderer", func() { NewShadowMap(nil, 4, 4) })
	assert.PanicsWithValue(t, "shadow: shadow map size must be non-zero, got 4x0", func() { NewShadowMap(r, 4, 0) })
}
