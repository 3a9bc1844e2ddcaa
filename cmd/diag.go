package cmd

import (
	"errors"

	"github.com/orion-rt/orion/engine"
	"github.com/urfave/cli"
)

// The probe value passed to the engine diagnostic entry point.
const diagProbe = 123

// Load the native engine library honoring the global library path override.
func loadEngine(ctx *cli.Context) (*engine.Library, error) {
	if path := ctx.GlobalString("library"); path != "" {
		return engine.LoadFrom(path)
	}
	return engine.Load()
}

// Run a load diagnostic for the native engine library. The library is
// located and loaded, its diagnostic entry point is probed and the
// resolved path and version are reported. A non-zero exit status
// indicates that the engine cannot service render calls on this host.
func Diag(ctx *cli.Context) error {
	setupLogging(ctx)

	lib, err := loadEngine(ctx)
	if err != nil {
		logger.Error(err)
		return errors.New("library not loaded")
	}

	if !lib.SelfTest(diagProbe) {
		return errors.New("test function failed")
	}

	logger.Noticef("loaded %s (version %s, ABI %d)", lib.Path(), lib.Version(), lib.ABIVersion())
	logger.Notice("engine diagnostics passed")
	return nil
}
