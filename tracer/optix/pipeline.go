package optix

import (
	"image"
	"image/png"
	"os"
	"time"

	"github.com/orion-rt/orion/tracer"
)

// DebugFlag is a bitmask of flags that control the debugging output of
// the rendering pipeline.
type DebugFlag uint16

const (
	Off DebugFlag = 0

	// Log per-stage timings for every traced block.
	StageTimings DebugFlag = 1 << iota

	// Dump the readback framebuffer to a png file after every traced block.
	FrameBuffer
)

// PipelineStage is a function that applies a single step of the rendering
// pipeline to a block request. Stages report the time they took so slow
// steps can be spotted when timing output is enabled.
type PipelineStage func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error)

// Pipeline describes the sequence of stages that the tracer executes for
// each block request.
type Pipeline struct {
	DebugFlags DebugFlag

	// Trace a batch of samples into the engine accumulation buffer.
	Trace PipelineStage

	// An optional set of stages applied to the accumulated samples
	// before they are read back (denoising, tonemapping).
	PostProcess []PipelineStage

	// Copy the display framebuffer rows for this block into the block's
	// render target.
	Readback PipelineStage
}

// DefaultPipeline returns a pipeline that accumulates samples, tonemaps
// them and reads the traced rows back into the render target.
func DefaultPipeline(debugFlags DebugFlag, exposure, gamma float32) *Pipeline {
	pipeline := &Pipeline{
		DebugFlags: debugFlags,
		Trace:      AccumulateSamples(),
		PostProcess: []PipelineStage{
			Tonemap(exposure, gamma),
		},
		Readback: ReadFrame(),
	}

	if debugFlags&FrameBuffer == FrameBuffer {
		pipeline.PostProcess = append(pipeline.PostProcess, DebugFrameBuffer("debug-fb.png"))
	}

	return pipeline
}

// AccumulateSamples returns a stage that launches the engine and adds a
// batch of per-pixel samples to the accumulation buffer.
func AccumulateSamples() PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		err := tr.ctx.Launch(int32(blockReq.SamplesPerPixel), blockReq.Seed)
		return time.Since(start), err
	}
}

// Denoise returns a stage that runs the engine denoiser over the
// accumulated samples. The denoised result is blended with the noisy
// input; a blend factor of 1.0 keeps only the denoised output.
func Denoise(blend float32) PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		err := tr.ctx.Denoise(blend)
		return time.Since(start), err
	}
}

// Tonemap returns a stage that applies exposure and gamma correction to
// the accumulated samples and writes the result to the engine display
// framebuffer.
func Tonemap(exposure, gamma float32) PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		err := tr.ctx.Tonemap(exposure, gamma)
		return time.Since(start), err
	}
}

// ReadFrame returns a stage that reads the display framebuffer back to
// the host and copies the rows traced by this block into the block's
// render target.
func ReadFrame() PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		if err := tr.ctx.ReadFrame(tr.frameBuffer); err != nil {
			return time.Since(start), err
		}

		rowBytes := int(blockReq.FrameW) * 4
		startOfs := int(blockReq.BlockY) * rowBytes
		endOfs := startOfs + int(blockReq.BlockH)*rowBytes
		copy(blockReq.RenderTarget[startOfs:endOfs], tr.frameBuffer[startOfs:endOfs])

		return time.Since(start), nil
	}
}

// DebugFrameBuffer returns a stage that dumps the full display
// framebuffer to a png file.
func DebugFrameBuffer(imgFile string) PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		if err := tr.ctx.ReadFrame(tr.frameBuffer); err != nil {
			return time.Since(start), err
		}

		f, err := os.Create(imgFile)
		if err != nil {
			return time.Since(start), err
		}
		defer f.Close()

		im := image.NewRGBA(image.Rect(0, 0, int(tr.frameW), int(tr.frameH)))
		copy(im.Pix, tr.frameBuffer)

		return time.Since(start), png.Encode(f, im)
	}
}
