// Package cli wires the broker's flat in-process surface into a Cobra
// command tree. It is a thin, illustrative collaborator: JSON shaping and
// help text live here, never in internal/broker or the packages it wires.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/outpost-dev/rlm/internal/broker"
	"github.com/outpost-dev/rlm/internal/config"
	"github.com/outpost-dev/rlm/internal/rlmerr"
)

var rootDir string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rlm",
	Short: "rlm - a local code-intelligence broker",
	Long: `rlm indexes a repository into semantically-bounded chunks and exposes
query and surgical-edit operations over them.

It keeps no server state between invocations; each command opens
.rlm/index.db, does its work, and closes it.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "project root (default: current directory)")
}

// Execute adds all child commands to the root command and runs it. It is
// called by main.main, and maps the broker's typed errors to the exit codes
// spec §6 recommends.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if be, ok := rlmerr.As(err); ok {
			os.Exit(be.Kind.ExitCode())
		}
		os.Exit(1)
	}
}

// openBroker loads configuration for rootDir (or the working directory) and
// opens a Broker against it. Every command opens its own broker and closes
// it before returning, since rlm holds no long-lived server state.
func openBroker() (*broker.Broker, string, error) {
	dir := rootDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}

	b, err := broker.Open(defaultFs(), dir, cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open broker: %w", err)
	}
	return b, dir, nil
}
