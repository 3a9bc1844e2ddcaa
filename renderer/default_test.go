package renderer

import (
	"errors"
	"testing"
	"time"

	"github.com/orion-rt/orion/engine"
	"github.com/orion-rt/orion/log"
	"github.com/orion-rt/orion/scene"
	"github.com/orion-rt/orion/tracer"
)

func TestRenderAssemblesBlocksFromAllTracers(t *testing.T) {
	mock0 := makeMockTracer("0", 1, 0x11)
	mock1 := makeMockTracer("1", 3, 0x22)
	r := makeTestRenderer(Options{FrameW: 4, FrameH: 8, SamplesPerPixel: 1}, mock0, mock1)

	im, err := r.Render()
	if err != nil {
		t.Fatal(err)
	}

	// Rows are split 2/6 between the tracers based on their speed estimates.
	rowBytes := 4 * 4
	for ofs := 0; ofs < 2*rowBytes; ofs++ {
		if im.Pix[ofs] != 0x11 {
			t.Fatalf("expected rows [0, 2) to be traced by tracer 0; got byte %#x at offset %d", im.Pix[ofs], ofs)
		}
	}
	for ofs := 2 * rowBytes; ofs < 8*rowBytes; ofs++ {
		if im.Pix[ofs] != 0x22 {
			t.Fatalf("expected rows [2, 8) to be traced by tracer 1; got byte %#x at offset %d", im.Pix[ofs], ofs)
		}
	}

	stats := r.Stats()
	if len(stats.Tracers) != 2 {
		t.Fatalf("expected stats for 2 tracers; got %d", len(stats.Tracers))
	}
	if !stats.Tracers[0].IsPrimary || stats.Tracers[1].IsPrimary {
		t.Fatal("expected only the first tracer to be flagged as primary")
	}
	if stats.Tracers[0].BlockH != 2 || stats.Tracers[1].BlockH != 6 {
		t.Fatalf("expected block assignment (2, 6); got (%d, %d)", stats.Tracers[0].BlockH, stats.Tracers[1].BlockH)
	}
	if stats.Tracers[0].FramePercent != 25.0 || stats.Tracers[1].FramePercent != 75.0 {
		t.Fatalf("expected frame percentages (25, 75); got (%f, %f)", stats.Tracers[0].FramePercent, stats.Tracers[1].FramePercent)
	}
	if stats.SamplesPerPixel != 1 {
		t.Fatalf("expected 1 accumulated sample; got %d", stats.SamplesPerPixel)
	}
}

func TestRenderAccumulatesRequestedSamples(t *testing.T) {
	mock := makeMockTracer("0", 1, 0xff)
	r := makeTestRenderer(Options{FrameW: 2, FrameH: 2, SamplesPerPixel: 3}, mock)

	if _, err := r.Render(); err != nil {
		t.Fatal(err)
	}

	expSamples := []uint32{0, 1, 2}
	if len(mock.accumulatedSamples) != len(expSamples) {
		t.Fatalf("expected %d sample passes; got %d", len(expSamples), len(mock.accumulatedSamples))
	}
	for passIndex, exp := range expSamples {
		if mock.accumulatedSamples[passIndex] != exp {
			t.Fatalf("expected pass %d to report %d accumulated samples; got %d", passIndex, exp, mock.accumulatedSamples[passIndex])
		}
	}
}

func TestRenderReportsTracerError(t *testing.T) {
	expError := errors.New("optix tracer: launch failed")
	mock := makeMockTracer("0", 1, 0xff)
	mock.failWith = expError
	r := makeTestRenderer(Options{FrameW: 2, FrameH: 2, SamplesPerPixel: 1}, mock)

	_, err := r.Render()
	if err != expError {
		t.Fatalf("expected to get tracer error; got %v", err)
	}
}

func TestRenderWithoutTracers(t *testing.T) {
	r := makeTestRenderer(Options{FrameW: 2, FrameH: 2, SamplesPerPixel: 1})

	_, err := r.Render()
	if err != ErrNoTracers {
		t.Fatalf("expected to get ErrNoTracers; got %v", err)
	}
}

func TestNewDefaultValidation(t *testing.T) {
	opts := Options{FrameW: 16, FrameH: 16}

	_, err := NewDefault(nil, nil, tracer.NaiveScheduler(), nil, opts)
	if err != ErrSceneNotDefined {
		t.Fatalf("expected to get ErrSceneNotDefined; got %v", err)
	}

	sc := scene.NewScene()
	sc.Camera = nil
	_, err = NewDefault(sc, nil, tracer.NaiveScheduler(), nil, opts)
	if err != ErrCameraNotDefined {
		t.Fatalf("expected to get ErrCameraNotDefined; got %v", err)
	}

	_, err = NewDefault(scene.NewScene(), nil, tracer.NaiveScheduler(), nil, Options{FrameW: 16})
	if err != ErrInvalidFrameDims {
		t.Fatalf("expected to get ErrInvalidFrameDims; got %v", err)
	}
}

func TestPromotePrimaryDevice(t *testing.T) {
	devices := engine.DeviceList{
		{Ordinal: 0, Name: "NVIDIA GeForce GTX 1060"},
		{Ordinal: 1, Name: "NVIDIA GeForce RTX 3080"},
		{Ordinal: 2, Name: "NVIDIA TITAN V"},
	}

	promoted := promotePrimaryDevice(devices, "RTX 3080")
	if promoted[0].Ordinal != 1 {
		t.Fatalf("expected matching device to be promoted to primary; got ordinal %d", promoted[0].Ordinal)
	}

	promoted = promotePrimaryDevice(devices, "")
	if promoted[0].Ordinal != 1 {
		t.Fatal("expected empty pattern to leave the device order unchanged")
	}

	promoted = promotePrimaryDevice(devices, "AMD")
	if promoted[0].Ordinal != 1 {
		t.Fatal("expected unmatched pattern to leave the device order unchanged")
	}
}

func makeTestRenderer(opts Options, tracers ...tracer.Tracer) *defaultRenderer {
	return &defaultRenderer{
		logger:       log.New("renderer"),
		options:      opts,
		scheduler:    tracer.NaiveScheduler(),
		tracers:      tracers,
		renderTarget: make([]uint8, int(opts.FrameW)*int(opts.FrameH)*4),
	}
}

type mockTracer struct {
	id    string
	speed uint32
	fill  uint8
	stats *tracer.Stats

	failWith           error
	accumulatedSamples []uint32
}

func makeMockTracer(id string, speed uint32, fill uint8) *mockTracer {
	return &mockTracer{
		id:    id,
		speed: speed,
		fill:  fill,
		stats: &tracer.Stats{},
	}
}

func (m *mockTracer) Id() string {
	return m.id
}

func (m *mockTracer) Speed() uint32 {
	return m.speed
}

func (m *mockTracer) Init(_, _ uint32) error {
	return nil
}

func (m *mockTracer) Close() {
}

func (m *mockTracer) Stats() *tracer.Stats {
	return m.stats
}

func (m *mockTracer) UpdateState(_ tracer.UpdateMode, _ tracer.UpdateType, _ interface{}) error {
	return nil
}

func (m *mockTracer) Enqueue(blockReq tracer.BlockRequest) {
	if m.failWith != nil {
		blockReq.ErrChan <- m.failWith
		return
	}

	rowBytes := int(blockReq.FrameW) * 4
	startOfs := int(blockReq.BlockY) * rowBytes
	endOfs := startOfs + int(blockReq.BlockH)*rowBytes
	for ofs := startOfs; ofs < endOfs; ofs++ {
		blockReq.RenderTarget[ofs] = m.fill
	}

	m.accumulatedSamples = append(m.accumulatedSamples, blockReq.AccumulatedSamples)
	m.stats.BlockH = blockReq.BlockH
	m.stats.RenderTime = 10 * time.Millisecond
	blockReq.DoneChan <- blockReq.BlockH
}
