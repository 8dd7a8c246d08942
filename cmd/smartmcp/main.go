// Package main is the entry point for the smartmcp CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/smartmcp/cmd/smartmcp/commands"
	"github.com/thoreinstein/smartmcp/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		exitErr := errors.Classify(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr)
		if exitErr.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "Suggestion: %s\n", exitErr.Suggestion)
		}
		os.Exit(exitErr.Code)
	}
}
