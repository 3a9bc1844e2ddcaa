package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"runtime"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/orion-rt/orion/engine"
	"github.com/orion-rt/orion/renderer"
	"github.com/orion-rt/orion/scene/reader"
	"github.com/orion-rt/orion/tracer"
	"github.com/orion-rt/orion/tracer/optix"
	"github.com/urfave/cli"
	"golang.org/x/image/draw"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	profile, err := activeRenderProfile(ctx)
	if err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	lib, err := loadEngine(ctx)
	if err != nil {
		return err
	}

	pipeline, err := buildPipeline(lib, profile, debugFlags(ctx))
	if err != nil {
		return err
	}

	r, err := renderer.NewDefault(sc, lib, tracer.NaiveScheduler(), pipeline, profile.rendererOptions())
	if err != nil {
		return err
	}
	defer r.Close()

	logger.Noticef("rendering %dx%d frame with %d samples per pixel", profile.Frame.Width, profile.Frame.Height, profile.Frame.SamplesPerPixel)
	frame, err := r.Render()
	if err != nil {
		return err
	}

	displayFrameStats(r.Stats())

	if profile.Frame.Supersample > 1 {
		frame = downsampleFrame(frame, int(profile.Frame.Width), int(profile.Frame.Height))
	}

	return writeFrame(frame, ctx.String("out"))
}

// Render a continuously updating view of the scene.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	profile, err := activeRenderProfile(ctx)
	if err != nil {
		return err
	}

	// The window is sized to the frame so supersampling does not apply;
	// without an explicit sample target keep accumulating until closed.
	profile.Frame.Supersample = 1
	if !ctx.IsSet("spp") {
		profile.Frame.SamplesPerPixel = renderer.AutoSamplesPerPixel
	}

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	lib, err := loadEngine(ctx)
	if err != nil {
		return err
	}

	pipeline, err := buildPipeline(lib, profile, debugFlags(ctx))
	if err != nil {
		return err
	}

	// The opengl context must stay on the main thread.
	runtime.LockOSThread()

	r, err := renderer.NewInteractive(sc, lib, tracer.PerfectScheduler(), pipeline, profile.rendererOptions())
	if err != nil {
		return err
	}
	defer r.Close()

	_, err = r.Render()
	return err
}

// Assemble the tracing pipeline for a render profile.
func buildPipeline(lib *engine.Library, profile *renderProfile, flags optix.DebugFlag) (*optix.Pipeline, error) {
	pipeline := optix.DefaultPipeline(flags, profile.PostProcess.Exposure, profile.PostProcess.Gamma)

	if profile.PostProcess.Denoise {
		if !lib.HasDenoiser() {
			return nil, errors.New("profile: denoising requested but the loaded engine library does not ship the denoiser")
		}
		// Denoise operates on the accumulated samples so it runs before
		// the tonemap stage.
		pipeline.PostProcess = append([]optix.PipelineStage{optix.Denoise(profile.PostProcess.DenoiserBlend)}, pipeline.PostProcess...)
	}

	return pipeline, nil
}

func debugFlags(ctx *cli.Context) optix.DebugFlag {
	flags := optix.Off
	if ctx.GlobalBool("vv") {
		flags |= optix.StageTimings
	}
	if ctx.Bool("debug-fb") {
		flags |= optix.FrameBuffer
	}
	return flags
}

// Downscale a supersampled frame to the output dimensions.
func downsampleFrame(frame *image.RGBA, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(out, out.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	return out
}

// Encode a rendered frame to a png file.
func writeFrame(frame *image.RGBA, imgFile string) error {
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	if err = png.Encode(f, frame); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s in %d ms", imgFile, time.Since(start).Nanoseconds()/1000000)
	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Primary", "Block height", "% of frame", "Update time", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%t", stat.IsPrimary),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%s", stat.UpdateTime),
			fmt.Sprintf("%s", stat.RenderTime),
		})
	}
	table.SetFooter([]string{"", "", "", "", "TOTAL", fmt.Sprintf("%s", stats.RenderTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
