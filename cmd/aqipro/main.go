// Package main provides the entrypoint for the aqipro command line client.
package main

import (
	"fmt"
	"os"

	"github.com/aqipro/aqipro/internal/cli"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	if err := cli.Run(Version); err != nil {
		fmt.Fprintln(os.Stderr, "aqipro:", err)
		os.Exit(1)
	}
}
