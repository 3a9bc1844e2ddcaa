package cmd

import (
	"github.com/orion-rt/orion/log"
	"github.com/urfave/cli"
)

var logger = log.New("orion")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
