package main

import (
	"flag"
	"os"

	"github.com/louisbranch/zkgames/internal/platform/config"
	"github.com/louisbranch/zkgames/internal/tools/commitgen"
)

func main() {
	cfg, err := commitgen.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := commitgen.Run(cfg, os.Stdout, nil); err != nil {
		config.Exitf("compute commitment: %v", err)
	}
}
