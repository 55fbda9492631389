// Package main is the entry point for clipshuffle.
package main

import (
	"github.com/clipshuffle/clipshuffle/cmd"
	"github.com/clipshuffle/clipshuffle/config"
	"github.com/clipshuffle/clipshuffle/log"
	"github.com/clipshuffle/clipshuffle/where"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup(where.Logs()))

	cmd.Execute()
}
