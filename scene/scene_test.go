package scene

import (
	"testing"

	"github.com/orion-rt/orion/types"
)

func TestSceneDefaults(t *testing.T) {
	sc := NewScene()

	if sc.Camera == nil {
		t.Fatal("expected new scenes to include a default camera")
	}
	if sc.Camera.FOV != 45.0 {
		t.Fatalf("expected default camera FOV to be 45.0; got %f", sc.Camera.FOV)
	}
	if len(sc.Meshes) != 0 || len(sc.Materials) != 0 || len(sc.Lights) != 0 {
		t.Fatal("expected new scenes to contain no meshes, materials or lights")
	}
}

func TestNewMaterialDefaults(t *testing.T) {
	mat := NewMaterial("white")

	if mat.Name != "white" {
		t.Fatalf("expected material name to be 'white'; got %q", mat.Name)
	}
	if mat.Roughness != 1.0 {
		t.Fatalf("expected new materials to start fully rough; got roughness %f", mat.Roughness)
	}
}

func TestAddMaterial(t *testing.T) {
	sc := NewScene()
	mat := NewMaterial("white")

	if err := sc.AddMaterial(mat); err != nil {
		t.Fatal(err)
	}
	if len(sc.Materials) != 1 {
		t.Fatalf("expected scene to contain 1 material; got %d", len(sc.Materials))
	}

	expError := "scene: material already added"
	if err := sc.AddMaterial(mat); err == nil || err.Error() != expError {
		t.Fatalf("expected to get error %q; got %v", expError, err)
	}
}

func TestAddMesh(t *testing.T) {
	sc := NewScene()
	mesh := NewMesh("triangle")

	expError := "scene: mesh references unknown material; ensure that the material is added to the scene before adding the mesh"
	if err := sc.AddMesh(mesh); err == nil || err.Error() != expError {
		t.Fatalf("expected to get error %q; got %v", expError, err)
	}

	if err := sc.AddMaterial(NewMaterial("white")); err != nil {
		t.Fatal(err)
	}
	if err := sc.AddMesh(mesh); err != nil {
		t.Fatal(err)
	}
	if len(sc.Meshes) != 1 {
		t.Fatalf("expected scene to contain 1 mesh; got %d", len(sc.Meshes))
	}

	expError = "scene: mesh already added"
	if err := sc.AddMesh(mesh); err == nil || err.Error() != expError {
		t.Fatalf("expected to get error %q; got %v", expError, err)
	}
}

func TestMeshGeometry(t *testing.T) {
	mesh := NewMesh("triangle")
	normal := types.Vec3{0, 0, 1}

	v0 := mesh.AddVertex(types.Vec3{-1, -1, 0}, normal)
	v1 := mesh.AddVertex(types.Vec3{1, -1, 0}, normal)
	v2 := mesh.AddVertex(types.Vec3{0, 2, 0}, normal)
	mesh.Indices = append(mesh.Indices, v0, v1, v2)

	if v0 != 0 || v1 != 1 || v2 != 2 {
		t.Fatalf("expected vertex indices to be assigned sequentially; got %d, %d, %d", v0, v1, v2)
	}
	if got := mesh.VertexCount(); got != 3 {
		t.Fatalf("expected mesh to contain 3 vertices; got %d", got)
	}
	if got := mesh.TriangleCount(); got != 1 {
		t.Fatalf("expected mesh to contain 1 triangle; got %d", got)
	}

	bbox := mesh.BBox()
	if expMin := (types.Vec3{-1, -1, 0}); bbox[0] != expMin {
		t.Fatalf("expected bbox min to be %v; got %v", expMin, bbox[0])
	}
	if expMax := (types.Vec3{1, 2, 0}); bbox[1] != expMax {
		t.Fatalf("expected bbox max to be %v; got %v", expMax, bbox[1])
	}
}

func TestSceneTriangleCount(t *testing.T) {
	sc := NewScene()
	if err := sc.AddMaterial(NewMaterial("white")); err != nil {
		t.Fatal(err)
	}

	first := NewMesh("first")
	first.Indices = []int32{0, 1, 2}
	second := NewMesh("second")
	second.Indices = []int32{0, 1, 2, 2, 1, 3}

	if err := sc.AddMesh(first); err != nil {
		t.Fatal(err)
	}
	if err := sc.AddMesh(second); err != nil {
		t.Fatal(err)
	}

	if got := sc.TriangleCount(); got != 3 {
		t.Fatalf("expected scene to contain 3 triangles; got %d", got)
	}
}
