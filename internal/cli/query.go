package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var mapCmd = &cobra.Command{
	Use:   "map <file>",
	Short: "List the top-level chunks of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _, err := openBroker()
		if err != nil {
			return err
		}
		defer b.Close()

		chunks, err := b.Map(args[0])
		if err != nil {
			return err
		}
		return printJSON(chunks)
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree <file>",
	Short: "Print the nested chunk outline of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _, err := openBroker()
		if err != nil {
			return err
		}
		defer b.Close()

		entries, err := b.Tree(args[0])
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%*s%s %s (L%d-%d)\n", e.Depth*2, "", e.Chunk.Kind, e.Chunk.Identifier, e.Chunk.StartLine, e.Chunk.EndLine)
		}
		return nil
	},
}

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over indexed chunk identifiers and content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _, err := openBroker()
		if err != nil {
			return err
		}
		defer b.Close()

		results, err := b.SearchFullText(args[0], searchLimit)
		if err != nil {
			return err
		}
		return printJSON(results)
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of results")
	rootCmd.AddCommand(mapCmd, treeCmd, searchCmd, peekCmd, resolveCmd, impactCmd)
}

var peekCmd = &cobra.Command{
	Use:   "peek <chunk-id>",
	Short: "Print one chunk's full content by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chunk id %q: %w", args[0], err)
		}

		b, _, err := openBroker()
		if err != nil {
			return err
		}
		defer b.Close()

		c, err := b.Peek(id)
		if err != nil {
			return err
		}
		return printJSON(c)
	},
}

var resolveKind string

var resolveCmd = &cobra.Command{
	Use:   "resolve <file> <identifier>",
	Short: "Resolve an identifier to a chunk within a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _, err := openBroker()
		if err != nil {
			return err
		}
		defer b.Close()

		c, err := b.ResolveSymbol(args[0], args[1], kindOrEmpty(resolveKind))
		if err != nil {
			return err
		}
		return printJSON(c)
	},
}

var impactCmd = &cobra.Command{
	Use:   "impact <file> <identifier>",
	Short: "Best-effort caller view for a symbol",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _, err := openBroker()
		if err != nil {
			return err
		}
		defer b.Close()

		result, err := b.ImpactView(args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveKind, "kind", "", "restrict resolution to this chunk kind")
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
