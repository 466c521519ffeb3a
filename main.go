// Package main is the entry point for embscope, a tool for exploring how text embeddings
// relate: it projects vectors to 2D or 3D, groups them and compares every pair, in the
// terminal, as JSON or YAML, or as MCP tools for LLM agents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alDuncanson/embscope/cli"
)

// version is set at build time via ldflags, defaults to "dev" for local builds
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
