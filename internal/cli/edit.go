package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/outpost-dev/rlm/internal/edit"
)

var (
	editIdentifier string
	editKind       string
	editStartLine  int
	editEndLine    int
	editCodeFile   string
	editPreview    bool
)

func addSelectorFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&editIdentifier, "identifier", "", "identifier to select (mutually exclusive with --start-line/--end-line)")
	cmd.Flags().StringVar(&editKind, "kind", "", "restrict selection to this chunk kind")
	cmd.Flags().IntVar(&editStartLine, "start-line", 0, "explicit selection start line (1-based)")
	cmd.Flags().IntVar(&editEndLine, "end-line", 0, "explicit selection end line (1-based, inclusive)")
	cmd.Flags().StringVar(&editCodeFile, "code-file", "", "file containing the replacement/inserted code (default: stdin)")
	cmd.Flags().BoolVar(&editPreview, "preview", false, "compute the diff without writing")
}

func selectorFromFlags() edit.Selector {
	return edit.Selector{
		Identifier: editIdentifier,
		Kind:       kindOrEmpty(editKind),
		StartLine:  editStartLine,
		EndLine:    editEndLine,
	}
}

func readCode() (string, error) {
	if editCodeFile != "" {
		data, err := os.ReadFile(editCodeFile)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", editCodeFile, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

var replaceCmd = &cobra.Command{
	Use:   "replace <file>",
	Short: "Replace one selected chunk's bytes with new code",
	Long: `Replace resolves a selector (either --identifier[/--kind] or an explicit
--start-line/--end-line range) to one chunk, rejects the edit if the
resulting file would not parse, and otherwise writes it atomically and
triggers a reindex.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := readCode()
		if err != nil {
			return err
		}

		b, _, err := openBroker()
		if err != nil {
			return err
		}
		defer b.Close()

		result, err := b.Replace(args[0], selectorFromFlags(), code, editPreview)
		if err != nil {
			return err
		}
		return printEditResult(result)
	},
}

var insertPosition string
var insertLine int

var insertCmd = &cobra.Command{
	Use:   "insert <file>",
	Short: "Insert new code relative to a selected container chunk",
	Long: `Insert resolves a container selector the same way replace does, then
inserts code at one of body_start, body_end, before_line or after_line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := readCode()
		if err != nil {
			return err
		}

		pos, err := parsePosition(insertPosition)
		if err != nil {
			return err
		}

		b, _, err := openBroker()
		if err != nil {
			return err
		}
		defer b.Close()

		result, err := b.Insert(args[0], selectorFromFlags(), edit.InsertAt{Position: pos, Line: insertLine}, code, editPreview)
		if err != nil {
			return err
		}
		return printEditResult(result)
	},
}

func parsePosition(s string) (edit.Position, error) {
	switch s {
	case "", "body_end":
		return edit.PositionBodyEnd, nil
	case "body_start":
		return edit.PositionBodyStart, nil
	case "before_line":
		return edit.PositionBeforeLine, nil
	case "after_line":
		return edit.PositionAfterLine, nil
	default:
		return 0, fmt.Errorf("unknown --position %q (want body_start, body_end, before_line or after_line)", s)
	}
}

func init() {
	addSelectorFlags(replaceCmd)
	addSelectorFlags(insertCmd)
	insertCmd.Flags().StringVar(&insertPosition, "position", "body_end", "body_start, body_end, before_line or after_line")
	insertCmd.Flags().IntVar(&insertLine, "line", 0, "line number for before_line/after_line positions")
	rootCmd.AddCommand(replaceCmd, insertCmd)
}

func printEditResult(r *edit.Result) error {
	if r.Diff != "" {
		fmt.Print(r.Diff)
	}
	if r.Written {
		fmt.Fprintf(os.Stderr, "wrote %s\n", r.Path)
	} else {
		fmt.Fprintf(os.Stderr, "preview only, %s not modified\n", r.Path)
	}
	return nil
}
