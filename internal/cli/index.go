package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/outpost-dev/rlm/internal/config"
	"github.com/outpost-dev/rlm/internal/ingest"
)

var watchFlag bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Walk, parse and store chunks for the project",
	Long: `Index walks the project tree, parses every file its registered language
supports, and replaces each changed file's chunks in .rlm/index.db.

Examples:
  rlm index
  rlm index --watch`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "keep running and reindex on file changes")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "interrupted, cancelling...")
		cancel()
	}()

	b, dir, err := openBroker()
	if err != nil {
		return err
	}
	defer b.Close()

	stats, err := b.Index(ctx)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	printStats(dir, stats)

	if !watchFlag {
		return nil
	}

	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "watching for changes, press Ctrl+C to stop...")
	return b.Watch(ctx, cfg, func(s *ingest.Stats, watchErr error) {
		if watchErr != nil {
			fmt.Fprintf(os.Stderr, "reindex error: %v\n", watchErr)
			return
		}
		printStats(dir, s)
	})
}

func printStats(dir string, s *ingest.Stats) {
	fmt.Printf("%s: %d seen, %d indexed, %d skipped, %d failed, %d deleted\n",
		dir, s.FilesSeen, s.FilesIndexed, s.FilesSkipped, s.FilesFailed, s.FilesDeleted)
	for _, w := range s.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}
