package cmd

import (
	"bytes"
	"fmt"

	"github.com/urfave/cli"
)

// Display version and capability information for the loaded engine library.
func LibraryInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	lib, err := loadEngine(ctx)
	if err != nil {
		return err
	}

	devices, err := lib.Devices()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("\nLibrary  %s\n", lib.Path()))
	buf.WriteString(fmt.Sprintf("Version  %s\n", lib.Version()))
	buf.WriteString(fmt.Sprintf("ABI      %d\n", lib.ABIVersion()))
	buf.WriteString(fmt.Sprintf("Denoiser %t\n", lib.HasDenoiser()))
	buf.WriteString(fmt.Sprintf("Devices  %d\n", len(devices)))

	logger.Notice(buf.String())
	return nil
}
