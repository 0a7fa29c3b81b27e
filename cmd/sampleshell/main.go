package main

import (
	"github.com/robotalks/sampleslot/pkg/cli/sh"
	"github.com/robotalks/sampleslot/pkg/config"
)

//go-build: CGO_ENABLED=0

func init() {
	config.SetupFlags()
}

func main() {
	sh.Main()
}
