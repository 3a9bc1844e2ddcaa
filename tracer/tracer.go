// Package tracer defines the interface between the renderer and the devices
// that trace frame blocks, together with the schedulers that split frames
// across them.
package tracer

import "time"

// UpdateMode selects how a tracer applies a state update.
type UpdateMode uint8

const (
	// Queue the update; it is applied before the next block is traced.
	Asynchronous UpdateMode = iota

	// Apply the update immediately.
	Synchronous
)

// UpdateType describes the payload of a state update.
type UpdateType uint8

const (
	// Full scene data. The update payload is a *scene.Scene.
	SceneData UpdateType = iota

	// Camera data. The update payload is a *scene.Camera.
	CameraData
)

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Frame dimensions.
	FrameW uint32
	FrameH uint32

	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// The number of samples to trace for each pixel in the block.
	SamplesPerPixel uint32

	// A random seed value for the tracer's random number generator.
	Seed uint32

	// Number of samples already accumulated for the current camera position.
	AccumulatedSamples uint32

	// The RGBA frame buffer receiving traced output. The buffer covers the
	// full frame; a tracer only writes the rows assigned to its block.
	RenderTarget []uint8

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height.
	BlockH uint32

	// The time for rendering this block.
	RenderTime time.Duration

	// The time for applying queued state updates.
	UpdateTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Get the computation speed estimate for this tracer.
	Speed() uint32

	// Initialize the tracer for tracing frames with the given dimensions.
	Init(frameW, frameH uint32) error

	// Shutdown and cleanup tracer.
	Close()

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Update tracer state. Asynchronous updates are queued and applied
	// before the next block is traced; synchronous updates are applied
	// before this method returns.
	UpdateState(UpdateMode, UpdateType, interface{}) error

	// Retrieve last frame statistics.
	Stats() *Stats
}
