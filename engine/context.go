package engine

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/orion-rt/orion/types"
)

// A per-render engine context bound to a single device. Contexts own the
// engine-side acceleration structures, launch state and accumulation
// buffers. A context is not safe for concurrent use; callers must serialize
// access (the optix tracer does this through its worker goroutine).
type Context struct {
	lib    *Library
	handle uintptr
	device Device

	frameW uint32
	frameH uint32
}

// Create a rendering context on the given device.
func (lib *Library) NewContext(dev Device) (*Context, error) {
	handle := fnCreateContext(dev.Ordinal)
	if handle == 0 {
		return nil, fmt.Errorf("engine: could not create context on device %s: %s", dev.Name, lastError())
	}

	return &Context{
		lib:    lib,
		handle: handle,
		device: dev,
	}, nil
}

// Get the device this context renders on.
func (c *Context) Device() Device {
	return c.device
}

// Get the current frame dimensions.
func (c *Context) FrameDims() (uint32, uint32) {
	return c.frameW, c.frameH
}

// Destroy the context and release its engine-side resources. Close is
// idempotent.
func (c *Context) Close() error {
	if c.handle == 0 {
		return nil
	}

	fnDestroyContext(c.handle)
	c.handle = 0
	return nil
}

// Resize the context framebuffer. Resizing resets the accumulated samples.
func (c *Context) Resize(frameW, frameH uint32) error {
	if c.handle == 0 {
		return ErrContextDestroyed
	}

	if err := c.check("resize", fnResize(c.handle, frameW, frameH)); err != nil {
		return err
	}

	c.frameW, c.frameH = frameW, frameH
	return nil
}

// Restrict tracing to the frame rows [y, y+h). Launch only traces pixels
// inside the region; rows outside it keep their previous framebuffer
// contents. Resize resets the region to the full frame.
func (c *Context) SetRegion(y, h uint32) error {
	if c.handle == 0 {
		return ErrContextDestroyed
	}
	if h == 0 || y+h > c.frameH {
		return fmt.Errorf("engine context (%s): region rows [%d, %d) outside frame height %d", c.device.Name, y, y+h, c.frameH)
	}

	return c.check("set_region", fnSetRegion(c.handle, y, h))
}

// Point the camera. The engine derives its internal projection setup from
// the eye/target/up triplet and the vertical field of view (in degrees).
// Moving the camera resets the accumulated samples.
func (c *Context) SetCamera(eye, target, up types.Vec3, fov float32) error {
	if c.handle == 0 {
		return ErrContextDestroyed
	}

	return c.check("set_camera", fnSetCamera(
		c.handle,
		unsafe.Pointer(&eye[0]),
		unsafe.Pointer(&target[0]),
		unsafe.Pointer(&up[0]),
		fov,
	))
}

// Set the background color used for rays that escape the scene.
func (c *Context) SetBackground(color types.Vec3) error {
	if c.handle == 0 {
		return ErrContextDestroyed
	}

	return c.check("set_background", fnSetBackground(c.handle, color[0], color[1], color[2]))
}

// Upload a triangle mesh. Vertices and normals are packed xyz triplets and
// indices reference vertices in groups of three. Normals may be empty in
// which case the engine generates face normals. Uploading a mesh with a name
// that is already present replaces the previous geometry.
func (c *Context) SetMesh(name string, vertices, normals []float32, indices []int32, materialIndex int32) error {
	if c.handle == 0 {
		return ErrContextDestroyed
	}
	if len(vertices) == 0 || len(vertices)%3 != 0 {
		return fmt.Errorf("engine context (%s): mesh %q vertex data must contain xyz triplets; got %d values", c.device.Name, name, len(vertices))
	}
	if len(normals) != 0 && len(normals) != len(vertices) {
		return fmt.Errorf("engine context (%s): mesh %q normal count %d does not match vertex count %d", c.device.Name, name, len(normals)/3, len(vertices)/3)
	}
	if len(indices) == 0 || len(indices)%3 != 0 {
		return fmt.Errorf("engine context (%s): mesh %q index data must contain triangles; got %d values", c.device.Name, name, len(indices))
	}

	var normalPtr unsafe.Pointer
	if len(normals) != 0 {
		normalPtr = unsafe.Pointer(&normals[0])
	}

	status := fnSetMesh(
		c.handle,
		name,
		unsafe.Pointer(&vertices[0]),
		int32(len(vertices)/3),
		normalPtr,
		unsafe.Pointer(&indices[0]),
		int32(len(indices)),
		materialIndex,
	)
	runtime.KeepAlive(vertices)
	runtime.KeepAlive(normals)
	runtime.KeepAlive(indices)

	return c.check("set_mesh", status)
}

// Define the material for a material slot referenced by uploaded meshes.
func (c *Context) SetMaterial(slot int32, albedo types.Vec3, roughness, metalness float32, emission types.Vec3) error {
	if c.handle == 0 {
		return ErrContextDestroyed
	}

	return c.check("set_material", fnSetMaterial(
		c.handle,
		slot,
		unsafe.Pointer(&albedo[0]),
		roughness,
		metalness,
		unsafe.Pointer(&emission[0]),
	))
}

// Add a spherical area light.
func (c *Context) AddLight(position, color types.Vec3, radius float32) error {
	if c.handle == 0 {
		return ErrContextDestroyed
	}

	return c.check("add_light", fnAddLight(
		c.handle,
		unsafe.Pointer(&position[0]),
		unsafe.Pointer(&color[0]),
		radius,
	))
}

// Trace a batch of samples and merge them into the accumulation buffer.
func (c *Context) Launch(samplesPerPixel int32, seed uint32) error {
	if c.handle == 0 {
		return ErrContextDestroyed
	}

	return c.check("launch", fnLaunch(c.handle, samplesPerPixel, seed))
}

// Run the AI denoiser over the accumulated frame. The blend factor selects
// between the denoised result (0) and the raw accumulator contents (1).
func (c *Context) Denoise(blend float32) error {
	if c.handle == 0 {
		return ErrContextDestroyed
	}
	if fnDenoise == nil {
		return ErrDenoiserUnavailable
	}

	return c.check("denoise", fnDenoise(c.handle, blend))
}

// Tonemap the accumulated frame into the display framebuffer.
func (c *Context) Tonemap(exposure, gamma float32) error {
	if c.handle == 0 {
		return ErrContextDestroyed
	}

	return c.check("tonemap", fnTonemap(c.handle, exposure, gamma))
}

// Copy the display framebuffer into dst as tightly packed RGBA8 rows. The
// destination must hold exactly frameW*frameH*4 bytes.
func (c *Context) ReadFrame(dst []uint8) error {
	if c.handle == 0 {
		return ErrContextDestroyed
	}

	expected := uint64(c.frameW) * uint64(c.frameH) * 4
	if expected == 0 || uint64(len(dst)) != expected {
		return fmt.Errorf("engine context (%s): frame buffer must be %d bytes; got %d", c.device.Name, expected, len(dst))
	}

	status := fnReadFrame(c.handle, unsafe.Pointer(&dst[0]), expected)
	runtime.KeepAlive(dst)

	return c.check("read_frame", status)
}

// Map a raw engine status code to an error carrying the failed op, the
// symbolic status name and any detail drained from last_error.
func (c *Context) check(op string, rawStatus int32) error {
	status := Status(rawStatus)
	if status.Ok() {
		return nil
	}

	if detail := lastError(); detail != "" {
		return fmt.Errorf("engine context (%s): %s failed with %s: %s", c.device.Name, op, status, detail)
	}
	return fmt.Errorf("engine context (%s): %s failed with %s", c.device.Name, op, status)
}
