package renderer

import "image"

// When passed as the sample count option the renderer keeps accumulating
// samples until it is closed.
const AutoSamplesPerPixel uint32 = 0

type Renderer interface {
	// Render frame and return its contents.
	Render() (*image.RGBA, error)

	// Shutdown renderer and any attached tracers.
	Close()

	// Get statistics for the last rendered frame.
	Stats() FrameStats
}
