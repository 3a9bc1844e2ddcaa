package renderer

import "time"

type TracerStat struct {
	// The tracer id.
	Id string

	// True if this is the primary tracer.
	IsPrimary bool

	// The block height and the percentage of the total frame area it
	// represents.
	BlockH       uint32
	FramePercent float32

	// Render and state update time for the assigned block.
	RenderTime time.Duration
	UpdateTime time.Duration
}

type FrameStats struct {
	// Individual tracer stats.
	Tracers []TracerStat

	// The number of accumulated samples per pixel.
	SamplesPerPixel uint32

	// Total render time for the entire frame.
	RenderTime time.Duration
}
