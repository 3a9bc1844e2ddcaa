package cmd

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the devices the engine can render on.
func ListDevices(ctx *cli.Context) error {
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
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Ordinal", "Name", "Memory", "Compute", "Speed estimate"})
	for _, dev := range devices {
		table.Append([]string{
			fmt.Sprintf("%d", dev.Ordinal),
			dev.Name,
			fmt.Sprintf("%d MB", dev.Memory>>20),
			dev.ComputeCapability(),
			fmt.Sprintf("%d", dev.SpeedEstimate()),
		})
	}
	table.Render()

	logger.Noticef("system provides %d engine device(s):\n%s", len(devices), buf.String())
	return nil
}
