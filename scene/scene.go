// Package scene defines the in-memory scene model that gets uploaded to the
// ray tracing engine: triangle meshes with flat vertex/normal/index arrays,
// materials using an albedo/roughness/metalness workflow, point lights and
// a camera.
package scene

import (
	"fmt"

	"github.com/orion-rt/orion/types"
)

// A mesh groups the triangles that share a material. Geometry is stored as
// flat arrays so that it can be handed to the engine without repacking.
type Mesh struct {
	Name string

	// Vertex positions and normals packed as xyz triplets.
	Vertices []float32
	Normals  []float32

	// Triangle vertex indices.
	Indices []int32

	// Index into the scene material list.
	MaterialIndex int32
}

func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]float32, 0),
		Normals:  make([]float32, 0),
		Indices:  make([]int32, 0),
	}
}

// AddVertex appends a position/normal pair and returns its index.
func (m *Mesh) AddVertex(pos, normal types.Vec3) int32 {
	m.Vertices = append(m.Vertices, pos[0], pos[1], pos[2])
	m.Normals = append(m.Normals, normal[0], normal[1], normal[2])
	return int32(len(m.Vertices)/3 - 1)
}

func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// BBox returns the axis-aligned bounds of the mesh vertices.
func (m *Mesh) BBox() [2]types.Vec3 {
	if len(m.Vertices) == 0 {
		return [2]types.Vec3{}
	}

	min := types.XYZ(m.Vertices[0], m.Vertices[1], m.Vertices[2])
	max := min
	for offset := 3; offset+2 < len(m.Vertices); offset += 3 {
		v := types.XYZ(m.Vertices[offset], m.Vertices[offset+1], m.Vertices[offset+2])
		min = types.MinVec3(min, v)
		max = types.MaxVec3(max, v)
	}

	return [2]types.Vec3{min, max}
}

// A material consists of the set of parameters that define the surface
// response using a metalness workflow.
type Material struct {
	Name string

	// Albedo color.
	Albedo types.Vec3

	// Emissive color.
	Emission types.Vec3

	Roughness float32
	Metalness float32
}

func NewMaterial(name string) *Material {
	return &Material{
		Name: name,
		// New materials start fully rough.
		Roughness: 1.0,
	}
}

// A point light with a radius for soft shadows.
type Light struct {
	Position types.Vec3
	Color    types.Vec3
	Radius   float32
}

type Scene struct {
	Camera *Camera

	Meshes    []*Mesh
	Materials []*Material
	Lights    []*Light

	Background types.Vec3
}

func NewScene() *Scene {
	return &Scene{
		Camera:    NewCamera(45.0),
		Meshes:    make([]*Mesh, 0),
		Materials: make([]*Material, 0),
		Lights:    make([]*Light, 0),
	}
}

// Attach a camera to the scene.
func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

// Add a material to the scene.
func (s *Scene) AddMaterial(material *Material) error {
	for _, mat := range s.Materials {
		if mat == material {
			return fmt.Errorf("scene: material already added")
		}
	}
	s.Materials = append(s.Materials, material)
	return nil
}

// Add a mesh to the scene.
func (s *Scene) AddMesh(mesh *Mesh) error {
	for _, m := range s.Meshes {
		if m == mesh {
			return fmt.Errorf("scene: mesh already added")
		}
	}
	if mesh.MaterialIndex < 0 || int(mesh.MaterialIndex) >= len(s.Materials) {
		return fmt.Errorf("scene: mesh references unknown material; ensure that the material is added to the scene before adding the mesh")
	}
	s.Meshes = append(s.Meshes, mesh)
	return nil
}

// Add a light to the scene.
func (s *Scene) AddLight(light *Light) {
	s.Lights = append(s.Lights, light)
}

// TriangleCount returns the total triangle count over all meshes.
func (s *Scene) TriangleCount() int {
	var total int
	for _, m := range s.Meshes {
		total += m.TriangleCount()
	}
	return total
}
