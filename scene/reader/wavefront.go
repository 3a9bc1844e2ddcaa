package reader

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/orion-rt/orion/asset"
	"github.com/orion-rt/orion/log"
	"github.com/orion-rt/orion/scene"
	"github.com/orion-rt/orion/types"
)

type wavefrontSceneReader struct {
	logger log.Logger

	// The scene being assembled.
	sceneGraph *scene.Scene

	// A map of material names to material index.
	matNameToIndex map[string]int32

	// Currently selected material index.
	curMaterial int32

	// List of parsed vertices, normals and uv coords. Face arguments index
	// into these lists; selected values are flattened into the mesh that
	// receives the face.
	vertexList []types.Vec3
	normalList []types.Vec3
	uvList     []types.Vec2

	// An error stack that provides additional error information when
	// scene files include other files (models, mat libs e.t.c)
	errStack []string
}

// Create a new text scene reader.
func newWavefrontReader() *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:         log.New("wavefront reader"),
		sceneGraph:     scene.NewScene(),
		matNameToIndex: make(map[string]int32, 0),
		curMaterial:    -1,
		vertexList:     make([]types.Vec3, 0),
		normalList:     make([]types.Vec3, 0),
		uvList:         make([]types.Vec2, 0),
		errStack:       make([]string, 0),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef("parsing scene from %s", sceneRes.Path())
	start := time.Now()

	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}

	// Drop meshes for object statements that never got any faces.
	meshes := r.sceneGraph.Meshes[:0]
	for _, mesh := range r.sceneGraph.Meshes {
		if mesh.TriangleCount() > 0 {
			meshes = append(meshes, mesh)
		}
	}
	r.sceneGraph.Meshes = meshes

	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)

	return r.sceneGraph, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = strings.Trim(
			fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	} else {
		errMsg = strings.Trim(
			fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	}

	return errors.New(errMsg)
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Create and select a default material for surfaces not using one.
func (r *wavefrontSceneReader) defaultMaterial() int32 {
	matName := ""

	// Search for material in referenced list
	matIndex, exists := r.matNameToIndex[matName]
	if !exists {
		// Add it now
		r.sceneGraph.Materials = append(r.sceneGraph.Materials, &scene.Material{
			Albedo:    types.Vec3{0.7, 0.7, 0.7},
			Roughness: 1.0,
		})
		matIndex = int32(len(r.sceneGraph.Materials) - 1)
		r.matNameToIndex[matName] = matIndex
	}
	r.curMaterial = matIndex
	return r.curMaterial
}

// currentMesh returns the mesh that receives parsed faces. A new mesh is
// started whenever the active material differs from the material of the mesh
// that is currently open, as the engine assigns materials per mesh.
func (r *wavefrontSceneReader) currentMesh() *scene.Mesh {
	if len(r.sceneGraph.Meshes) == 0 {
		r.sceneGraph.Meshes = append(r.sceneGraph.Meshes, scene.NewMesh("default"))
	}

	mesh := r.sceneGraph.Meshes[len(r.sceneGraph.Meshes)-1]
	if len(mesh.Indices) > 0 && mesh.MaterialIndex != r.curMaterial {
		mesh = scene.NewMesh(mesh.Name)
		r.sceneGraph.Meshes = append(r.sceneGraph.Meshes, mesh)
	}
	mesh.MaterialIndex = r.curMaterial

	return mesh
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 {
			continue
		}

		switch lineTokens[0] {
		case "#":
			continue
		case "call", "mtllib":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for '%s'; expected 1 argument; got %d", lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			defer incRes.Close()

			switch lineTokens[0] {
			case "call":
				err = r.parse(incRes)
			case "mtllib":
				err = r.parseMaterials(incRes)
			}

			if err != nil {
				return err
			}
			r.popFrame()
		case "usemtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for 'usemtl'; expected 1 argument; got %d", len(lineTokens)-1)
			}

			// Lookup material
			matName := lineTokens[1]
			matIndex, exists := r.matNameToIndex[matName]
			if !exists {
				return r.emitError(res.Path(), lineNum, "undefined material with name '%s'", matName)
			}

			// Activate material
			r.curMaterial = matIndex
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.normalList = append(r.normalList, v)
		case "vt":
			v, err := parseVec2(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.uvList = append(r.uvList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for '%s'; expected 1 argument for object name; got %d", lineTokens[0], len(lineTokens)-1)
			}

			r.sceneGraph.Meshes = append(r.sceneGraph.Meshes, scene.NewMesh(lineTokens[1]))
		case "f":
			err = r.parseFace(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		case "light":
			light, err := r.parseLight(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.sceneGraph.Lights = append(r.sceneGraph.Lights, light)
		case "camera_fov":
			r.sceneGraph.Camera.FOV, err = parseFloat32(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		case "camera_eye":
			r.sceneGraph.Camera.Position, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		case "camera_look":
			r.sceneGraph.Camera.LookAt, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		case "camera_up":
			r.sceneGraph.Camera.Up, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		case "background":
			r.sceneGraph.Background, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		}
	}

	return scanner.Err()
}

// Parse face definition. Each face definitions consists of 3 arguments,
// one for each vertex. Each one of the vertex arguments is comprised of
// 1, 2 or 3 args separated by a slash character. The following formats are
// supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate
// an offset off the end of the vertex/uv list.
//
// This method only works with triangular faces and will return an error if a
// face with more than 3 vertices is encountered.
func (r *wavefrontSceneReader) parseFace(lineTokens []string) error {
	if len(lineTokens) != 4 {
		return fmt.Errorf("unsupported syntax for 'f'; expected 3 arguments for triangular face; got %d. Select the triangulation option in your exporter.", len(lineTokens)-1)
	}

	var vertices [3]types.Vec3
	var normals [3]types.Vec3
	var hasNormals bool
	var vOffset int
	var err error
	expIndices := 0
	for arg := 0; arg < 3; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err = selectFaceCoordIndex(vTokens[0], len(r.vertexList))
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices[arg] = r.vertexList[vOffset]

		// Validate UV coords if specified. The engine works with untextured
		// meshes so the parsed value is discarded.
		if len(vTokens) > 1 && vTokens[1] != "" {
			_, err = selectFaceCoordIndex(vTokens[1], len(r.uvList))
			if err != nil {
				return fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
		}

		// Parse normal coords if specified
		if len(vTokens) > 2 && vTokens[2] != "" {
			vOffset, err = selectFaceCoordIndex(vTokens[2], len(r.normalList))
			if err != nil {
				return fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
			normals[arg] = r.normalList[vOffset]
			hasNormals = true
		}
	}

	// Fall back to the geometric normal when the face defines none.
	if !hasNormals {
		n := vertices[1].Sub(vertices[0]).Cross(vertices[2].Sub(vertices[0])).Normalize()
		normals[0], normals[1], normals[2] = n, n, n
	}

	// If no material defined select the default
	if r.curMaterial < 0 {
		r.defaultMaterial()
	}

	mesh := r.currentMesh()
	for arg := 0; arg < 3; arg++ {
		mesh.Indices = append(mesh.Indices, mesh.AddVertex(vertices[arg], normals[arg]))
	}

	return nil
}

// Parse point light definition. Definitions use the following format:
// light pX pY pZ cR cG cB radius
// where:
// - pX, pY, pZ : light position
// - cR, cG, cB : light color
// - radius     : light radius used for soft shadows
func (r *wavefrontSceneReader) parseLight(lineTokens []string) (*scene.Light, error) {
	if len(lineTokens) != 8 {
		return nil, fmt.Errorf("unsupported syntax for 'light'; expected 7 arguments: pX pY pZ cR cG cB radius; got %d", len(lineTokens)-1)
	}

	var vals [7]float32
	for index := 1; index < 8; index++ {
		v, err := strconv.ParseFloat(lineTokens[index], 32)
		if err != nil {
			return nil, err
		}
		vals[index-1] = float32(v)
	}

	return &scene.Light{
		Position: types.Vec3{vals[0], vals[1], vals[2]},
		Color:    types.Vec3{vals[3], vals[4], vals[5]},
		Radius:   vals[6],
	}, nil
}

// Parse a wavefront material library.
func (r *wavefrontSceneReader) parseMaterials(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	scanner := bufio.NewScanner(res)

	var curMaterial *scene.Material = nil

	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 {
			continue
		}

		switch lineTokens[0] {
		case "#":
			continue
		case "newmtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for 'newmtl'; expected 1 argument; got %d", len(lineTokens)-1)
			}

			matName := lineTokens[1]
			if _, exists := r.matNameToIndex[matName]; exists {
				return r.emitError(res.Path(), lineNum, "material '%s' already defined", matName)
			}

			// Allocate new material and add it to library
			curMaterial = scene.NewMaterial(matName)
			r.sceneGraph.Materials = append(r.sceneGraph.Materials, curMaterial)
			r.matNameToIndex[matName] = int32(len(r.sceneGraph.Materials) - 1)
		default:
			if curMaterial == nil {
				return r.emitError(res.Path(), lineNum, "got '%s' without a 'newmtl'", lineTokens[0])
			}

			switch lineTokens[0] {
			case "Kd":
				curMaterial.Albedo, err = parseVec3(lineTokens)
			case "Ke":
				curMaterial.Emission, err = parseVec3(lineTokens)
			case "Pr":
				curMaterial.Roughness, err = parseFloat32(lineTokens)
			case "Pm":
				curMaterial.Metalness, err = parseFloat32(lineTokens)
			case "Ns":
				// Legacy shininess exponent; remapped onto roughness.
				var ns float32
				ns, err = parseFloat32(lineTokens)
				if err == nil {
					if ns > 1000 {
						ns = 1000
					}
					curMaterial.Roughness = 1.0 - ns/1000.0
				}
			}

			// Report any errors
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		}
	}

	return scanner.Err()
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = int(index - 1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf("unsupported syntax for '%s'; expected 1 argument; got %d", lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf("unsupported syntax for '%s'; expected 2 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
