package scene

import (
	"github.com/orion-rt/orion/types"
)

// Direction for camera movement relative to the current view direction.
type CameraDirection uint8

const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
)

// The camera type controls the scene camera. The renderer hands the eye
// position, look-at target, up vector and field of view straight to the
// engine, which owns the projection math.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Pending pitch/yaw rotation deltas in radians. They are consumed by
	// the next Update call.
	Pitch float32
	Yaw   float32

	// Camera FOV in degrees.
	FOV float32
}

func NewCamera(fov float32) *Camera {
	return &Camera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
	}
}

// Move the camera along one of its local axes while preserving the view
// direction.
func (c *Camera) Move(dir CameraDirection, speed float32) {
	viewDir := c.LookAt.Sub(c.Position).Normalize()

	var delta types.Vec3
	switch dir {
	case Forward:
		delta = viewDir.Mul(speed)
	case Backward:
		delta = viewDir.Mul(-speed)
	case Left:
		delta = viewDir.Cross(c.Up).Normalize().Mul(-speed)
	case Right:
		delta = viewDir.Cross(c.Up).Normalize().Mul(speed)
	}

	c.Position = c.Position.Add(delta)
	c.LookAt = c.LookAt.Add(delta)
}

// Update rotates the look-at target around the eye position by the pending
// pitch/yaw deltas.
func (c *Camera) Update() {
	dir := c.LookAt.Sub(c.Position).Normalize()
	pitchAxis := dir.Cross(c.Up)
	pitchQuat := types.QuatFromAxisAngle(pitchAxis, c.Pitch)
	yawQuat := types.QuatFromAxisAngle(c.Up, c.Yaw)

	orientQuat := pitchQuat.Mul(yawQuat).Normalize()

	// Update direction
	dir = orientQuat.Rotate(dir)
	c.LookAt = c.Position.Add(dir)

	c.Pitch, c.Yaw = 0, 0
}
