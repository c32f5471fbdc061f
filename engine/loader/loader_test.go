package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleGLTF returns a glTF document with one indexed triangle in the XZ plane, its buffer
// embedded as a data URI, under a node translated by (0, 2, 0).
func triangleGLTF() string {
	var buf bytes.Buffer
	for _, f := range []float32{0, 0, 0, 0, 0, 1, 1, 0, 0} {
		_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(f))
	}
	for _, i := range []uint16{0, 1, 2} {
		_ = binary.Write(&buf, binary.LittleEndian, i)
	}
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	return fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"mesh": 0, "translation": [0, 2, 0]}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 0, 1]},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "buffers": [{"byteLength": %d, "uri": %q}]
}`, buf.Len(), uri)
}

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoader_LoadReaderFlattensNodeTransforms(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	m, err := l.LoadReader("tri", strings.NewReader(triangleGLTF()))
	require.NoError(t, err)
	mesh := m.Mesh()
	require.Len(t, mesh.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
	assert.Equal(t, "tri", m.Name())

	want := []mgl32.Vec3{{0, 2, 0}, {0, 2, 1}, {1, 2, 0}}
	for i, v := range mesh.Vertices {
		assert.InDeltaSlice(t, want[i][:], v.Position[:], 1e-6, "vertex %d: %v", i, v.Position)
		// no NORMAL attribute, so a flat +Y face normal is derived
		assert.InDeltaSlice(t, []float32{0, 1, 0}, v.Normal[:], 1e-6, "normal %d: %v", i, v.Normal)
	}
}

func TestLoader_LoadCachesMeshPerPath(t *testing.T) {
	path := writeFile(t, "tri.gltf", triangleGLTF())
	l := NewLoader(BackendTypeGLTF)

	a, err := l.Load(path)
	require.NoError(t, err)
	b, err := l.Load(path, model.WithName("second"))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Same(t, a.Mesh(), b.Mesh())
	assert.Equal(t, "tri", a.Name())
	assert.Equal(t, "second", b.Name())
	assert.Same(t, a.Mesh(), l.Mesh(path))
	assert.Len(t, l.Meshes(), 1)
}

func TestLoader_Errors(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "missing.gltf")},
		{"unsupported extension", writeFile(t, "mesh.obj", "v 0 0 0")},
		{"no triangles", writeFile(t, "empty.gltf", `{"asset":{"version":"2.0"},"scenes":[{"nodes":[0]}],"nodes":[{}]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := l.Load(tt.path)
			assert.Error(t, err)
			assert.Nil(t, m)
			assert.Nil(t, l.Mesh(tt.path))
		})
	}
}

func TestLoader_NoTrianglesIsWrapped(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	_, err := l.LoadReader("empty", strings.NewReader(`{"asset":{"version":"2.0"},"nodes":[{}]}`))
	assert.ErrorIs(t, err, errNoTriangles)
}

func TestWithMesh_PrePopulatesCache(t *testing.T) {
	cube := model.NewCube(1)
	l := NewLoader(BackendTypeGLTF, WithMesh("cube.gltf", cube))

	m, err := l.Load("cube.gltf")
	require.NoError(t, err)
	assert.Same(t, cube, m.Mesh())
	assert.Equal(t, "cube", m.Name())
}

func TestNewLoader_UnknownBackendPanics(t *testing.T) {
	assert.PanicsWithValue(t, "loader: unknown backend type 7", func() { NewLoader(LoaderBackendType(7)) })
}
