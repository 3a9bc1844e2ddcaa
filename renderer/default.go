package renderer

import (
	"fmt"
	"image"
	"math/rand"
	"strings"
	"time"

	"github.com/orion-rt/orion/engine"
	"github.com/orion-rt/orion/log"
	"github.com/orion-rt/orion/scene"
	"github.com/orion-rt/orion/tracer"
	"github.com/orion-rt/orion/tracer/optix"
)

// The default renderer splits each frame into horizontal blocks and
// schedules them onto one tracer per engine device. Tracers write their
// rows directly into a shared render target which is assembled into an
// image once all samples have been accumulated.
type defaultRenderer struct {
	logger log.Logger

	options   Options
	scheduler tracer.BlockScheduler

	// The attached tracers. The tracer at index 0 is the primary tracer.
	tracers []tracer.Tracer

	// The block rows assigned to each tracer for the last rendered frame.
	blockAssignments []uint32

	// The assembled RGBA frame. Tracers copy their rows into it.
	renderTarget []uint8

	// Statistics for the last rendered frame.
	stats FrameStats

	// Samples accumulated since the last state change.
	accumulatedSamples uint32
}

// Create a renderer that traces scene sc using one tracer for each device
// exposed by the engine library.
func NewDefault(sc *scene.Scene, lib *engine.Library, scheduler tracer.BlockScheduler, pipeline *optix.Pipeline, opts Options) (Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return nil, ErrCameraNotDefined
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrameDims
	}

	devices, err := lib.Devices()
	if err != nil {
		return nil, err
	}
	devices = devices.Exclude(opts.BlackListedDevices)
	devices = promotePrimaryDevice(devices, opts.ForcePrimaryDevice)
	if len(devices) == 0 {
		return nil, ErrNoTracers
	}

	r := &defaultRenderer{
		logger:       log.New("renderer"),
		options:      opts,
		scheduler:    scheduler,
		tracers:      make([]tracer.Tracer, 0, len(devices)),
		renderTarget: make([]uint8, int(opts.FrameW)*int(opts.FrameH)*4),
	}
	for _, dev := range devices {
		r.tracers = append(r.tracers, optix.NewTracer(fmt.Sprintf("%d: %s", dev.Ordinal, dev.Name), lib, dev, pipeline))
	}

	if err = r.initTracers(sc); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

// Move the first device whose name contains pattern to the front of the
// list so that it becomes the primary tracer.
func promotePrimaryDevice(devices engine.DeviceList, pattern string) engine.DeviceList {
	if pattern == "" {
		return devices
	}

	for devIndex, dev := range devices {
		if strings.Contains(dev.Name, pattern) {
			devices[0], devices[devIndex] = devices[devIndex], devices[0]
			break
		}
	}
	return devices
}

// Allocate an engine context for each tracer and upload the scene to it.
func (r *defaultRenderer) initTracers(sc *scene.Scene) error {
	for _, tr := range r.tracers {
		if err := tr.Init(r.options.FrameW, r.options.FrameH); err != nil {
			return err
		}
		if err := tr.UpdateState(tracer.Synchronous, tracer.SceneData, sc); err != nil {
			return err
		}
		r.logger.Noticef("attached tracer %s (speed estimate %d)", tr.Id(), tr.Speed())
	}
	return nil
}

func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}

func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

func (r *defaultRenderer) Render() (*image.RGBA, error) {
	samples := r.options.SamplesPerPixel
	if samples == AutoSamplesPerPixel {
		samples = 1
	}

	start := time.Now()
	for r.accumulatedSamples = 0; r.accumulatedSamples < samples; r.accumulatedSamples++ {
		if err := r.renderFrame(r.accumulatedSamples); err != nil {
			return nil, err
		}
	}
	r.stats.SamplesPerPixel = samples
	r.stats.RenderTime = time.Since(start)

	im := image.NewRGBA(image.Rect(0, 0, int(r.options.FrameW), int(r.options.FrameH)))
	copy(im.Pix, r.renderTarget)
	return im, nil
}

// Accumulate one sample per pixel. The frame is split into blocks which
// are enqueued to the attached tracers; the call returns once every
// assigned row has been traced.
func (r *defaultRenderer) renderFrame(accumulatedSamples uint32) error {
	if len(r.tracers) == 0 {
		return ErrNoTracers
	}

	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	doneChan := make(chan uint32, len(r.blockAssignments))
	errChan := make(chan error, len(r.blockAssignments))
	blockReq := tracer.BlockRequest{
		FrameW:             r.options.FrameW,
		FrameH:             r.options.FrameH,
		SamplesPerPixel:    1,
		AccumulatedSamples: accumulatedSamples,
		Seed:               rand.Uint32(),
		RenderTarget:       r.renderTarget,
		DoneChan:           doneChan,
		ErrChan:            errChan,
	}

	var blockY uint32
	for trIndex, blockH := range r.blockAssignments {
		blockReq.BlockY = blockY
		blockReq.BlockH = blockH
		r.tracers[trIndex].Enqueue(blockReq)
		blockY += blockH
	}

	var pendingRows = r.options.FrameH
	for pendingRows > 0 {
		select {
		case completedRows := <-doneChan:
			pendingRows -= completedRows
		case err := <-errChan:
			return err
		}
	}

	r.collectTracerStats()
	return nil
}

// Refresh the per-tracer frame stats with the last block assignments.
func (r *defaultRenderer) collectTracerStats() {
	r.stats.Tracers = r.stats.Tracers[:0]
	for trIndex, tr := range r.tracers {
		trStats := tr.Stats()
		r.stats.Tracers = append(r.stats.Tracers, TracerStat{
			Id:           tr.Id(),
			IsPrimary:    trIndex == 0,
			BlockH:       r.blockAssignments[trIndex],
			FramePercent: float32(r.blockAssignments[trIndex]) * 100.0 / float32(r.options.FrameH),
			RenderTime:   trStats.RenderTime,
			UpdateTime:   trStats.UpdateTime,
		})
	}
}
