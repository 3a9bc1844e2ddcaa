package main

import (
	"os"

	"github.com/orion-rt/orion/cmd"
	"github.com/orion-rt/orion/log"
	"github.com/urfave/cli"
)

var logger = log.New("orion")

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "orion"
	app.Usage = "render scenes with the OrionRT ray tracing engine"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "library, l",
			Usage: "explicit path to the native engine library",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "diag",
			Usage: "verify that the native engine library can be loaded",
			Description: `
Locate and load the native engine library, resolve its entry points and probe
its diagnostic function. Exits with a non-zero status when the library is
missing, exposes an incompatible ABI or fails its self test.`,
			Action: cmd.Diag,
		},
		{
			Name:   "info",
			Usage:  "show version and capability information for the engine library",
			Action: cmd.LibraryInfo,
		},
		{
			Name:   "list-devices",
			Usage:  "list devices the engine can render on",
			Action: cmd.ListDevices,
		},
		{
			Name:  "scene",
			Usage: "inspect scene files",
			Subcommands: []cli.Command{
				{
					Name:      "info",
					Usage:     "parse a scene file and display its contents",
					ArgsUsage: "scene_file.obj",
					Action:    cmd.SceneInfo,
				},
			},
		},
		{
			Name:  "render",
			Usage: "render scene",
			Subcommands: []cli.Command{
				{
					Name:        "frame",
					Usage:       "render single frame",
					Description: `Render a single frame and write it to a png file.`,
					ArgsUsage:   "scene_file.obj",
					Flags: append(frameFlags(),
						cli.IntFlag{
							Name:  "spp",
							Value: 32,
							Usage: "samples per pixel to accumulate",
						},
						cli.IntFlag{
							Name:  "supersample",
							Value: 1,
							Usage: "render at a multiple of the output dimensions and downscale",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
						cli.BoolFlag{
							Name:  "debug-fb",
							Usage: "dump the engine framebuffer to a png file after each traced block",
						},
					),
					Action: cmd.RenderFrame,
				},
				{
					Name:        "interactive",
					Usage:       "render interactive view of the scene",
					Description: `Progressively render the scene in a window with free camera movement.`,
					ArgsUsage:   "scene_file.obj",
					Flags: append(frameFlags(),
						cli.IntFlag{
							Name:  "spp",
							Usage: "stop accumulating samples after this many per pixel",
						},
					),
					Action: cmd.RenderInteractive,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

// Flags shared by the render subcommands.
func frameFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 512,
			Usage: "frame height",
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: 1.0,
			Usage: "camera exposure for tone-mapping",
		},
		cli.Float64Flag{
			Name:  "gamma",
			Value: 2.2,
			Usage: "gamma for tone-mapping",
		},
		cli.BoolFlag{
			Name:  "denoise",
			Usage: "denoise accumulated samples before tone-mapping",
		},
		cli.Float64Flag{
			Name:  "denoiser-blend",
			Value: 1.0,
			Usage: "blend factor between the denoised and noisy frame",
		},
		cli.StringSliceFlag{
			Name:  "blacklist, b",
			Value: &cli.StringSlice{},
			Usage: "blacklist engine devices whose names contain this value",
		},
		cli.StringFlag{
			Name:  "force-primary",
			Usage: "promote the device whose name contains this value to primary",
		},
		cli.StringFlag{
			Name:  "profile",
			Usage: "path to a toml render profile",
		},
	}
}
