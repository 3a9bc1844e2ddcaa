package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/orion-rt/orion/scene/reader"
	"github.com/urfave/cli"
)

// Parse a scene file and display its contents.
func SceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Mesh", "Triangles", "Material"})
	for _, mesh := range sc.Meshes {
		matName := ""
		if mesh.MaterialIndex >= 0 && int(mesh.MaterialIndex) < len(sc.Materials) {
			matName = sc.Materials[mesh.MaterialIndex].Name
		}
		table.Append([]string{
			mesh.Name,
			fmt.Sprintf("%d", mesh.TriangleCount()),
			matName,
		})
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d meshes", len(sc.Meshes)),
		fmt.Sprintf("%d", sc.TriangleCount()),
		fmt.Sprintf("%d materials", len(sc.Materials)),
	})
	table.Render()

	logger.Noticef("scene information (%d lights, background %v):\n%s", len(sc.Lights), sc.Background, buf.String())
	return nil
}
