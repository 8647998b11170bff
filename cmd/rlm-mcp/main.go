// Command rlm-mcp is a thin MCP stdio adapter over the broker's flat
// in-process surface. It holds no logic of its own; see internal/mcpserver.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/outpost-dev/rlm/internal/broker"
	"github.com/outpost-dev/rlm/internal/config"
	"github.com/outpost-dev/rlm/internal/mcpserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadFromDir(root)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	b, err := broker.Open(afero.NewOsFs(), root, cfg)
	if err != nil {
		return fmt.Errorf("failed to open broker: %w", err)
	}

	srv := mcpserver.New(b)
	defer srv.Close()

	fmt.Fprintf(os.Stderr, "rlm-mcp serving %s on stdio\n", root)
	return srv.Serve(context.Background())
}
