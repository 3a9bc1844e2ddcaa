package optix

import "testing"

func TestDefaultPipeline(t *testing.T) {
	pipeline := DefaultPipeline(Off, 1.2, 2.2)

	if pipeline.Trace == nil {
		t.Fatal("expected default pipeline to define a trace stage")
	}
	if pipeline.Readback == nil {
		t.Fatal("expected default pipeline to define a readback stage")
	}
	if len(pipeline.PostProcess) != 1 {
		t.Fatalf("expected default pipeline to define 1 post-process stage; got %d", len(pipeline.PostProcess))
	}
}

func TestDefaultPipelineWithFrameBufferDump(t *testing.T) {
	pipeline := DefaultPipeline(FrameBuffer, 1.2, 2.2)

	if len(pipeline.PostProcess) != 2 {
		t.Fatalf("expected framebuffer dumps to add a post-process stage; got %d stages", len(pipeline.PostProcess))
	}
}

func TestDebugFlags(t *testing.T) {
	flags := StageTimings | FrameBuffer

	if flags&StageTimings != StageTimings {
		t.Fatal("expected StageTimings flag to be set")
	}
	if flags&FrameBuffer != FrameBuffer {
		t.Fatal("expected FrameBuffer flag to be set")
	}
	if Off != 0 {
		t.Fatal("expected Off to clear all debug flags")
	}
}
