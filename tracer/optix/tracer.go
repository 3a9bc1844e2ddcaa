package optix

import (
	"fmt"
	"sync"
	"time"

	"github.com/orion-rt/orion/engine"
	"github.com/orion-rt/orion/log"
	"github.com/orion-rt/orion/scene"
	"github.com/orion-rt/orion/tracer"
)

// Tracer drives one engine context on one device. Block requests are
// processed by a dedicated worker goroutine; pipeline stages receive the
// tracer instance so they can reach its context and readback buffer.
type Tracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The library and device attached to this tracer instance.
	lib    *engine.Library
	device engine.Device

	// The engine context. Allocated by Init and released by Close.
	ctx *engine.Context

	// The tracer id.
	id string

	// A buffer for queuing state updates. Updates are grouped by type
	// and the latest update always overwrites any queued one.
	updateBuffer map[tracer.UpdateType]interface{}

	// A channel for receiving block render requests.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for the last rendered block.
	stats *tracer.Stats

	// The rendering pipeline to use.
	pipeline *Pipeline

	// The relative speed estimate for the attached device.
	speed uint32

	// The scene that has been uploaded to the engine.
	sceneData *scene.Scene

	// Frame dimensions set up by Init.
	frameW, frameH uint32

	// A host buffer where the engine framebuffer is read back into.
	frameBuffer []uint8

	// The engine region from the last traced block.
	curRegion [2]uint32
}

// Create a new tracer that renders blocks using an engine context on dev.
func NewTracer(id string, lib *engine.Library, dev engine.Device, pipeline *Pipeline) *Tracer {
	return &Tracer{
		logger:       log.New(fmt.Sprintf("optix tracer (%s)", dev.Name)),
		lib:          lib,
		device:       dev,
		id:           id,
		updateBuffer: make(map[tracer.UpdateType]interface{}, 0),
		blockReqChan: make(chan tracer.BlockRequest, 0),
		stats:        &tracer.Stats{},
		pipeline:     pipeline,
		speed:        dev.SpeedEstimate(),
	}
}

// Id implements tracer.Tracer.
func (tr *Tracer) Id() string {
	return tr.id
}

// Speed implements tracer.Tracer.
func (tr *Tracer) Speed() uint32 {
	return tr.speed
}

// Stats implements tracer.Tracer.
func (tr *Tracer) Stats() *tracer.Stats {
	return tr.stats
}

// Device returns the device this tracer is attached to.
func (tr *Tracer) Device() engine.Device {
	return tr.device
}

// Init implements tracer.Tracer.
func (tr *Tracer) Init(frameW, frameH uint32) error {
	tr.Lock()
	defer tr.Unlock()

	ctx, err := tr.lib.NewContext(tr.device)
	if err != nil {
		return err
	}
	tr.ctx = ctx

	if err = tr.ctx.Resize(frameW, frameH); err != nil {
		tr.cleanup()
		return err
	}
	tr.frameW, tr.frameH = frameW, frameH
	tr.frameBuffer = make([]uint8, int(frameW)*int(frameH)*4)
	tr.curRegion[0], tr.curRegion[1] = 0, frameH

	tr.startWorker()
	return nil
}

// Close implements tracer.Tracer.
func (tr *Tracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	tr.cleanup()
}

// Enqueue implements tracer.Tracer.
func (tr *Tracer) Enqueue(blockReq tracer.BlockRequest) {
	select {
	case tr.blockReqChan <- blockReq:
	default:
		tr.logger.Error("request processor did not receive block request")
	}
}

// UpdateState implements tracer.Tracer.
func (tr *Tracer) UpdateState(mode tracer.UpdateMode, updateType tracer.UpdateType, data interface{}) error {
	switch updateType {
	case tracer.SceneData, tracer.CameraData:
	default:
		return fmt.Errorf("optix tracer (%s): unsupported update type %d", tr.id, updateType)
	}

	tr.Lock()
	defer tr.Unlock()

	if mode == tracer.Synchronous {
		return tr.applyUpdate(updateType, data)
	}

	tr.updateBuffer[updateType] = data
	return nil
}

// Free tracer resources. The worker is signaled to exit and the engine
// context is destroyed. The caller must hold the tracer lock.
func (tr *Tracer) cleanup() {
	if tr.closeChan != nil {
		tr.closeChan <- struct{}{}
		<-tr.closeChan
		close(tr.closeChan)
		tr.closeChan = nil
		tr.wg.Wait()
	}

	if tr.ctx != nil {
		tr.ctx.Close()
		tr.ctx = nil
	}

	tr.sceneData = nil
	tr.frameBuffer = nil
}

// Spawn a goroutine that processes block render requests.
func (tr *Tracer) startWorker() {
	if tr.closeChan != nil {
		return
	}
	tr.closeChan = make(chan struct{}, 0)

	readyChan := make(chan struct{}, 0)
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()

		var blockReq tracer.BlockRequest
		close(readyChan)
		for {
			select {
			case blockReq = <-tr.blockReqChan:
				tr.process(&blockReq)
			case <-tr.closeChan:
				// Ack close request and exit.
				tr.closeChan <- struct{}{}
				return
			}
		}
	}()

	<-readyChan
}

// Commit pending updates and trace the requested block. Failures are
// reported to the block's error channel.
func (tr *Tracer) process(blockReq *tracer.BlockRequest) {
	tr.Lock()
	defer tr.Unlock()

	if len(tr.updateBuffer) != 0 {
		start := time.Now()
		if err := tr.commitUpdates(); err != nil {
			blockReq.ErrChan <- err
			return
		}
		tr.stats.UpdateTime = time.Since(start)
	}

	start := time.Now()
	if err := tr.traceBlock(blockReq); err != nil {
		blockReq.ErrChan <- err
		return
	}
	tr.stats.BlockH = blockReq.BlockH
	tr.stats.RenderTime = time.Since(start)

	blockReq.DoneChan <- blockReq.BlockH
}

// Apply all queued updates in a fixed order. Scene data is applied before
// camera data as a scene upload also uploads the camera it carries.
func (tr *Tracer) commitUpdates() error {
	for _, updateType := range []tracer.UpdateType{tracer.SceneData, tracer.CameraData} {
		data, exists := tr.updateBuffer[updateType]
		if !exists {
			continue
		}
		if err := tr.applyUpdate(updateType, data); err != nil {
			return err
		}
	}

	tr.updateBuffer = make(map[tracer.UpdateType]interface{}, 0)
	return nil
}

func (tr *Tracer) applyUpdate(updateType tracer.UpdateType, data interface{}) error {
	if tr.ctx == nil {
		return ErrNotInitialized
	}

	switch updateType {
	case tracer.SceneData:
		sc, ok := data.(*scene.Scene)
		if !ok {
			return fmt.Errorf("optix tracer (%s): scene data update requires a *scene.Scene payload", tr.id)
		}
		return tr.uploadScene(sc)
	case tracer.CameraData:
		camera, ok := data.(*scene.Camera)
		if !ok {
			return fmt.Errorf("optix tracer (%s): camera data update requires a *scene.Camera payload", tr.id)
		}
		return tr.uploadCamera(camera)
	}

	return fmt.Errorf("optix tracer (%s): unsupported update type %d", tr.id, updateType)
}

// Upload scene geometry, materials and lights to the engine. The engine
// only appends lights so uploading a second scene recreates the context
// before pushing the new data.
func (tr *Tracer) uploadScene(sc *scene.Scene) error {
	if tr.sceneData != nil {
		if err := tr.resetContext(); err != nil {
			return err
		}
	}

	start := time.Now()
	for matIndex, mat := range sc.Materials {
		if err := tr.ctx.SetMaterial(int32(matIndex), mat.Albedo, mat.Roughness, mat.Metalness, mat.Emission); err != nil {
			return err
		}
	}
	for _, mesh := range sc.Meshes {
		if err := tr.ctx.SetMesh(mesh.Name, mesh.Vertices, mesh.Normals, mesh.Indices, mesh.MaterialIndex); err != nil {
			return err
		}
	}
	for _, light := range sc.Lights {
		if err := tr.ctx.AddLight(light.Position, light.Color, light.Radius); err != nil {
			return err
		}
	}
	if err := tr.ctx.SetBackground(sc.Background); err != nil {
		return err
	}

	tr.sceneData = sc
	tr.logger.Debugf("uploaded scene: %d meshes, %d materials, %d lights in %d ms",
		len(sc.Meshes), len(sc.Materials), len(sc.Lights), time.Since(start).Nanoseconds()/1e6)

	return tr.uploadCamera(sc.Camera)
}

func (tr *Tracer) uploadCamera(camera *scene.Camera) error {
	if tr.sceneData != nil {
		tr.sceneData.Camera = camera
	}
	return tr.ctx.SetCamera(camera.Position, camera.LookAt, camera.Up, camera.FOV)
}

// Replace the engine context with a fresh one sized to the current frame.
func (tr *Tracer) resetContext() error {
	tr.ctx.Close()
	tr.ctx = nil

	ctx, err := tr.lib.NewContext(tr.device)
	if err != nil {
		return err
	}
	tr.ctx = ctx

	if err = tr.ctx.Resize(tr.frameW, tr.frameH); err != nil {
		return err
	}
	tr.curRegion[0], tr.curRegion[1] = 0, tr.frameH
	return nil
}

// Run the pipeline stages for a block request.
func (tr *Tracer) traceBlock(blockReq *tracer.BlockRequest) error {
	if tr.sceneData == nil {
		return ErrNoSceneData
	}

	// Restrict the engine launch to the rows assigned to this tracer.
	if tr.curRegion[0] != blockReq.BlockY || tr.curRegion[1] != blockReq.BlockH {
		if err := tr.ctx.SetRegion(blockReq.BlockY, blockReq.BlockH); err != nil {
			return err
		}
		tr.curRegion[0], tr.curRegion[1] = blockReq.BlockY, blockReq.BlockH
	}

	var traceTime, postTime, readTime time.Duration
	if tr.pipeline.Trace != nil {
		d, err := tr.pipeline.Trace(tr, blockReq)
		if err != nil {
			return err
		}
		traceTime = d
	}
	for _, stage := range tr.pipeline.PostProcess {
		d, err := stage(tr, blockReq)
		if err != nil {
			return err
		}
		postTime += d
	}
	if tr.pipeline.Readback != nil {
		d, err := tr.pipeline.Readback(tr, blockReq)
		if err != nil {
			return err
		}
		readTime = d
	}

	if tr.pipeline.DebugFlags&StageTimings == StageTimings {
		tr.logger.Debugf("block rows [%d, %d): trace %v, post-process %v, readback %v",
			blockReq.BlockY, blockReq.BlockY+blockReq.BlockH, traceTime, postTime, readTime)
	}

	return nil
}
