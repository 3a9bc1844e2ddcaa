package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/orion-rt/orion/renderer"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli"
)

// A render profile groups the frame, post-processing and device selection
// settings for the render commands. Profiles are stored as toml documents;
// explicitly passed command line flags override the values they provide.
type renderProfile struct {
	Frame struct {
		Width           uint32 `toml:"width"`
		Height          uint32 `toml:"height"`
		SamplesPerPixel uint32 `toml:"samples_per_pixel"`
		Supersample     uint32 `toml:"supersample"`
	} `toml:"frame"`

	PostProcess struct {
		Exposure      float32 `toml:"exposure"`
		Gamma         float32 `toml:"gamma"`
		Denoise       bool    `toml:"denoise"`
		DenoiserBlend float32 `toml:"denoiser_blend"`
	} `toml:"post_process"`

	Devices struct {
		Blacklist    []string `toml:"blacklist"`
		ForcePrimary string   `toml:"force_primary"`
	} `toml:"devices"`
}

func defaultRenderProfile() *renderProfile {
	profile := &renderProfile{}
	profile.Frame.Width = 512
	profile.Frame.Height = 512
	profile.Frame.SamplesPerPixel = 32
	profile.Frame.Supersample = 1
	profile.PostProcess.Exposure = 1.0
	profile.PostProcess.Gamma = 2.2
	profile.PostProcess.DenoiserBlend = 1.0
	return profile
}

// Parse a render profile overlaying its values on the defaults.
func loadRenderProfile(path string) (*renderProfile, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: could not read %s: %v", path, err)
	}

	profile := defaultRenderProfile()
	if err = toml.Unmarshal(payload, profile); err != nil {
		return nil, fmt.Errorf("profile: could not parse %s: %v", path, err)
	}

	return profile, nil
}

// Assemble the active render profile for a command invocation: the profile
// referenced by the profile flag (or the built-in defaults) with explicitly
// passed flags layered on top.
func activeRenderProfile(ctx *cli.Context) (*renderProfile, error) {
	profile := defaultRenderProfile()
	if path := ctx.String("profile"); path != "" {
		var err error
		if profile, err = loadRenderProfile(path); err != nil {
			return nil, err
		}
	}

	profile.applyFlagOverrides(ctx)

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

func (p *renderProfile) applyFlagOverrides(ctx *cli.Context) {
	if ctx.IsSet("width") {
		p.Frame.Width = uint32(ctx.Int("width"))
	}
	if ctx.IsSet("height") {
		p.Frame.Height = uint32(ctx.Int("height"))
	}
	if ctx.IsSet("spp") {
		p.Frame.SamplesPerPixel = uint32(ctx.Int("spp"))
	}
	if ctx.IsSet("supersample") {
		p.Frame.Supersample = uint32(ctx.Int("supersample"))
	}
	if ctx.IsSet("exposure") {
		p.PostProcess.Exposure = float32(ctx.Float64("exposure"))
	}
	if ctx.IsSet("gamma") {
		p.PostProcess.Gamma = float32(ctx.Float64("gamma"))
	}
	if ctx.IsSet("denoise") {
		p.PostProcess.Denoise = ctx.Bool("denoise")
	}
	if ctx.IsSet("denoiser-blend") {
		p.PostProcess.DenoiserBlend = float32(ctx.Float64("denoiser-blend"))
	}
	if ctx.IsSet("blacklist") {
		p.Devices.Blacklist = ctx.StringSlice("blacklist")
	}
	if ctx.IsSet("force-primary") {
		p.Devices.ForcePrimary = ctx.String("force-primary")
	}
}

func (p *renderProfile) Validate() error {
	if p.Frame.Width == 0 || p.Frame.Height == 0 {
		return errors.New("profile: frame dimensions must be greater than zero")
	}
	if p.Frame.Supersample == 0 || p.Frame.Supersample > 4 {
		return errors.New("profile: supersample factor must be between 1 and 4")
	}
	if p.PostProcess.Gamma <= 0 {
		return errors.New("profile: gamma must be greater than zero")
	}
	if p.PostProcess.DenoiserBlend < 0 || p.PostProcess.DenoiserBlend > 1 {
		return errors.New("profile: denoiser blend must be in the [0, 1] range")
	}
	return nil
}

// Map the profile to renderer options. Supersampling renders the frame at
// a multiple of the output dimensions; the result is downscaled before it
// is written out.
func (p *renderProfile) rendererOptions() renderer.Options {
	return renderer.Options{
		FrameW:             p.Frame.Width * p.Frame.Supersample,
		FrameH:             p.Frame.Height * p.Frame.Supersample,
		SamplesPerPixel:    p.Frame.SamplesPerPixel,
		Exposure:           p.PostProcess.Exposure,
		Gamma:              p.PostProcess.Gamma,
		BlackListedDevices: p.Devices.Blacklist,
		ForcePrimaryDevice: p.Devices.ForcePrimary,
	}
}
