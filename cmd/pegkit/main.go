// Package main provides the entry point for the pegkit CLI tool.
package main

import (
	"context"
	"os"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/pegkit/cmd/pegkit/commands"
	"github.com/Sumatoshi-tech/pegkit/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().ExecuteContext(context.Background())
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
