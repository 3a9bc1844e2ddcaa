package cmd

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli"
)

func TestDefaultRenderProfile(t *testing.T) {
	profile := defaultRenderProfile()

	if profile.Frame.Width != 512 || profile.Frame.Height != 512 {
		t.Fatalf("expected default frame dims to be 512x512; got %dx%d", profile.Frame.Width, profile.Frame.Height)
	}
	if profile.Frame.SamplesPerPixel != 32 {
		t.Fatalf("expected default samples per pixel to be 32; got %d", profile.Frame.SamplesPerPixel)
	}
	if profile.Frame.Supersample != 1 {
		t.Fatalf("expected default supersample factor to be 1; got %d", profile.Frame.Supersample)
	}
	if profile.PostProcess.Exposure != 1.0 || profile.PostProcess.Gamma != 2.2 {
		t.Fatalf("expected default tonemap settings (1.0, 2.2); got (%f, %f)", profile.PostProcess.Exposure, profile.PostProcess.Gamma)
	}
	if profile.PostProcess.Denoise {
		t.Fatal("expected denoising to be disabled by default")
	}
	if err := profile.Validate(); err != nil {
		t.Fatalf("expected default profile to validate; got %v", err)
	}
}

func TestLoadRenderProfile(t *testing.T) {
	payload := `
[frame]
width = 1920
height = 1080
samples_per_pixel = 128

[post_process]
denoise = true
denoiser_blend = 0.75

[devices]
blacklist = ["GTX 1060"]
force_primary = "RTX"
`
	profile, err := loadRenderProfile(writeTestProfile(t, payload))
	if err != nil {
		t.Fatal(err)
	}

	if profile.Frame.Width != 1920 || profile.Frame.Height != 1080 {
		t.Fatalf("expected frame dims from profile; got %dx%d", profile.Frame.Width, profile.Frame.Height)
	}
	if profile.Frame.SamplesPerPixel != 128 {
		t.Fatalf("expected 128 samples per pixel; got %d", profile.Frame.SamplesPerPixel)
	}

	// Values missing from the document keep their defaults.
	if profile.Frame.Supersample != 1 {
		t.Fatalf("expected supersample factor to default to 1; got %d", profile.Frame.Supersample)
	}
	if profile.PostProcess.Gamma != 2.2 {
		t.Fatalf("expected gamma to default to 2.2; got %f", profile.PostProcess.Gamma)
	}

	if !profile.PostProcess.Denoise || profile.PostProcess.DenoiserBlend != 0.75 {
		t.Fatalf("expected denoising with blend 0.75; got %t %f", profile.PostProcess.Denoise, profile.PostProcess.DenoiserBlend)
	}
	if len(profile.Devices.Blacklist) != 1 || profile.Devices.Blacklist[0] != "GTX 1060" {
		t.Fatalf("expected device blacklist from profile; got %v", profile.Devices.Blacklist)
	}
	if profile.Devices.ForcePrimary != "RTX" {
		t.Fatalf("expected forced primary device from profile; got %q", profile.Devices.ForcePrimary)
	}
}

func TestLoadRenderProfileErrors(t *testing.T) {
	_, err := loadRenderProfile(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.HasPrefix(err.Error(), "profile: could not read") {
		t.Fatalf("expected read error; got %v", err)
	}

	_, err = loadRenderProfile(writeTestProfile(t, "[frame\nwidth = 1"))
	if err == nil || !strings.HasPrefix(err.Error(), "profile: could not parse") {
		t.Fatalf("expected parse error; got %v", err)
	}
}

func TestRenderProfileValidation(t *testing.T) {
	type spec struct {
		mutate   func(*renderProfile)
		expError string
	}

	specs := []spec{
		{
			func(p *renderProfile) { p.Frame.Width = 0 },
			"profile: frame dimensions must be greater than zero",
		},
		{
			func(p *renderProfile) { p.Frame.Supersample = 0 },
			"profile: supersample factor must be between 1 and 4",
		},
		{
			func(p *renderProfile) { p.Frame.Supersample = 5 },
			"profile: supersample factor must be between 1 and 4",
		},
		{
			func(p *renderProfile) { p.PostProcess.Gamma = 0 },
			"profile: gamma must be greater than zero",
		},
		{
			func(p *renderProfile) { p.PostProcess.DenoiserBlend = 1.5 },
			"profile: denoiser blend must be in the [0, 1] range",
		},
	}

	for specIndex, spec := range specs {
		profile := defaultRenderProfile()
		spec.mutate(profile)

		err := profile.Validate()
		if err == nil || err.Error() != spec.expError {
			t.Fatalf("[spec %d] expected to get error:\n %s\n got:\n %v", specIndex, spec.expError, err)
		}
	}
}

func TestRenderProfileFlagOverrides(t *testing.T) {
	set := flag.NewFlagSet("test", 0)
	set.Int("width", 512, "")
	set.Int("height", 512, "")
	set.Int("spp", 32, "")
	if err := set.Parse([]string{"-width", "1024", "-spp", "64"}); err != nil {
		t.Fatal(err)
	}
	ctx := cli.NewContext(nil, set, nil)

	profile := defaultRenderProfile()
	profile.applyFlagOverrides(ctx)

	if profile.Frame.Width != 1024 {
		t.Fatalf("expected width flag to override the profile; got %d", profile.Frame.Width)
	}
	if profile.Frame.Height != 512 {
		t.Fatalf("expected unset height flag to keep the profile value; got %d", profile.Frame.Height)
	}
	if profile.Frame.SamplesPerPixel != 64 {
		t.Fatalf("expected spp flag to override the profile; got %d", profile.Frame.SamplesPerPixel)
	}
}

func TestRendererOptionsFromProfile(t *testing.T) {
	profile := defaultRenderProfile()
	profile.Frame.Width = 640
	profile.Frame.Height = 480
	profile.Frame.Supersample = 2
	profile.Frame.SamplesPerPixel = 16
	profile.Devices.Blacklist = []string{"CPU"}

	opts := profile.rendererOptions()
	if opts.FrameW != 1280 || opts.FrameH != 960 {
		t.Fatalf("expected supersampled frame dims 1280x960; got %dx%d", opts.FrameW, opts.FrameH)
	}
	if opts.SamplesPerPixel != 16 {
		t.Fatalf("expected 16 samples per pixel; got %d", opts.SamplesPerPixel)
	}
	if opts.Exposure != 1.0 || opts.Gamma != 2.2 {
		t.Fatalf("expected tonemap settings (1.0, 2.2); got (%f, %f)", opts.Exposure, opts.Gamma)
	}
	if len(opts.BlackListedDevices) != 1 || opts.BlackListedDevices[0] != "CPU" {
		t.Fatalf("expected device blacklist to be mapped; got %v", opts.BlackListedDevices)
	}
}

func writeTestProfile(t *testing.T, payload string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "profile.toml")
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
