// Package main is the entry point for the opsintel CLI application.
package main

import (
	"fmt"
	"os"

	"github.com/danielolaszy/opsintel/cmd"
	"github.com/danielolaszy/opsintel/internal/logging"
)

// main executes the root command and exits non-zero on any error.
func main() {
	logging.Debug("starting opsintel cli", "version", "1.0.0")

	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
