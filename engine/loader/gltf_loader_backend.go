package loader

import (
	"errors"
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// errNoTriangles is returned when a document holds no indexable triangle primitives.
var errNoTriangles = errors.New("no triangle primitives")

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct{}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend() gltfLoaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*model.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	return b.flatten(doc)
}

func (b *gltfLoaderBackendImpl) LoadReader(r io.Reader) (*model.Mesh, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("gltf decode: %w", err)
	}
	return b.flatten(doc)
}

// flatten walks the default scene, or every root node when the document names none, and bakes
// node transforms into a single mesh.
func (b *gltfLoaderBackendImpl) flatten(doc *gltf.Document) (*model.Mesh, error) {
	out := &model.Mesh{}

	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	default:
		for i := range doc.Nodes {
			roots = append(roots, i)
		}
	}

	for _, ni := range roots {
		if err := b.walk(doc, ni, mgl32.Ident4(), out, 0); err != nil {
			return nil, err
		}
	}
	if len(out.Indices) == 0 {
		return nil, errNoTriangles
	}
	return out, nil
}

// maxNodeDepth bounds recursion through malformed, cyclic node graphs.
const maxNodeDepth = 64

func (b *gltfLoaderBackendImpl) walk(doc *gltf.Document, ni int, parent mgl32.Mat4, out *model.Mesh, depth int) error {
	if ni < 0 || ni >= len(doc.Nodes) {
		return fmt.Errorf("node %d out of range", ni)
	}
	if depth > maxNodeDepth {
		return fmt.Errorf("node %d: hierarchy deeper than %d", ni, maxNodeDepth)
	}
	gn := doc.Nodes[ni]
	world := parent.Mul4(nodeMatrix(gn))

	if gn.Mesh != nil {
		if *gn.Mesh >= len(doc.Meshes) {
			return fmt.Errorf("node %d: mesh %d out of range", ni, *gn.Mesh)
		}
		for pi, prim := range doc.Meshes[*gn.Mesh].Primitives {
			if err := appendPrimitive(doc, prim, world, out); err != nil {
				return fmt.Errorf("mesh %d primitive %d: %w", *gn.Mesh, pi, err)
			}
		}
	}
	for _, ci := range gn.Children {
		if err := b.walk(doc, ci, world, out, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// nodeMatrix returns the node's explicit matrix, or T*R*S when it carries none.
func nodeMatrix(gn *gltf.Node) mgl32.Mat4 {
	var m mgl32.Mat4
	for i, v := range gn.MatrixOrDefault() {
		m[i] = float32(v)
	}
	if m != mgl32.Ident4() {
		return m
	}

	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault()
	s := gn.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

func appendPrimitive(doc *gltf.Document, prim *gltf.Primitive, world mgl32.Mat4, out *model.Mesh) error {
	if prim.Mode != gltf.PrimitiveTriangles {
		common.Logger().Warn("skipping non-triangle primitive", "mode", prim.Mode)
		return nil
	}
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return errors.New("missing POSITION attribute")
	}
	for _, idx := range prim.Attributes {
		if idx < 0 || idx >= len(doc.Accessors) {
			return fmt.Errorf("accessor %d out of range", idx)
		}
	}
	if prim.Indices != nil && (*prim.Indices < 0 || *prim.Indices >= len(doc.Accessors)) {
		return fmt.Errorf("index accessor %d out of range", *prim.Indices)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if nIdx, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[nIdx], nil); err != nil {
			return fmt.Errorf("read normals: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions)-len(positions)%3)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	normalMat := world.Mat3().Inv().Transpose()
	base := uint32(len(out.Vertices))
	for i, p := range positions {
		v := model.Vertex{Position: common.TransformPoint(world, mgl32.Vec3{p[0], p[1], p[2]}).Vec3()}
		if i < len(normals) {
			n := normals[i]
			v.Normal = common.NormalizeOr(normalMat.Mul3x1(mgl32.Vec3{n[0], n[1], n[2]}), mgl32.Vec3{0, 1, 0})
		}
		out.Vertices = append(out.Vertices, v)
	}

	start := len(out.Indices)
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
		}
		out.Indices = append(out.Indices, base+idx)
	}
	if len(normals) == 0 {
		flatNormals(out, start)
	}
	return nil
}

// flatNormals assigns each vertex the face normal of the last triangle that references it,
// for indices appended from start onwards.
func flatNormals(m *model.Mesh, start int) {
	for i := start; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		pa, pb, pc := m.Vertices[a].Position, m.Vertices[b].Position, m.Vertices[c].Position
		n := common.NormalizeOr(pb.Sub(pa).Cross(pc.Sub(pa)), mgl32.Vec3{0, 1, 0})
		m.Vertices[a].Normal = n
		m.Vertices[b].Normal = n
		m.Vertices[c].Normal = n
	}
}
