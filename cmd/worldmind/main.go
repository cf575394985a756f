// Package main provides the CLI entry point for the worldmind application.
package main

import (
	"fmt"
	"os"

	"github.com/worldmind/worldmind/internal/cmd"
)

// Version is the current version of the worldmind application.
const Version = "0.1.0"

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
