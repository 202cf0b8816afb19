package main

import (
	"os"

	"github.com/Iron-Ham/linefilter/internal/cmd"
)

// Set with -ldflags at release time.
var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	cmd.SetVersion(version, commit)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
