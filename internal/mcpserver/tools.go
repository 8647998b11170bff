package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/outpost-dev/rlm/internal/broker"
	"github.com/outpost-dev/rlm/internal/chunk"
	"github.com/outpost-dev/rlm/internal/edit"
	"github.com/outpost-dev/rlm/internal/rlmerr"
)

func argsOf(request mcp.CallToolRequest) (map[string]interface{}, bool) {
	m, ok := request.Params.Arguments.(map[string]interface{})
	return m, ok
}

func stringResult(v interface{}) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

func errResult(err error) (*mcp.CallToolResult, error) {
	if be, ok := rlmerr.As(err); ok {
		msg := be.Error()
		if len(be.Spans) > 0 {
			if data, mErr := json.Marshal(be.Spans); mErr == nil {
				msg += " " + string(data)
			}
		}
		return mcp.NewToolResultError(msg), nil
	}
	return nil, err
}

func addIndexTool(s *server.MCPServer, b *broker.Broker) {
	tool := mcp.NewTool("rlm_index",
		mcp.WithDescription("Walk the project, parse changed files, and replace their chunks in the index."),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := b.Index(ctx)
		if err != nil {
			return errResult(err)
		}
		return stringResult(stats), nil
	})
}

func addMapTool(s *server.MCPServer, b *broker.Broker) {
	tool := mcp.NewTool("rlm_map",
		mcp.WithDescription("List the top-level chunks of one file."),
		mcp.WithString("file", mcp.Required(), mcp.Description("repo-relative file path")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := argsOf(request)
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		file, _ := args["file"].(string)
		if file == "" {
			return mcp.NewToolResultError("file parameter is required"), nil
		}
		chunks, err := b.Map(file)
		if err != nil {
			return errResult(err)
		}
		return stringResult(chunks), nil
	})
}

func addTreeTool(s *server.MCPServer, b *broker.Broker) {
	tool := mcp.NewTool("rlm_tree",
		mcp.WithDescription("Return the nested chunk outline of one file."),
		mcp.WithString("file", mcp.Required(), mcp.Description("repo-relative file path")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := argsOf(request)
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		file, _ := args["file"].(string)
		if file == "" {
			return mcp.NewToolResultError("file parameter is required"), nil
		}
		entries, err := b.Tree(file)
		if err != nil {
			return errResult(err)
		}
		return stringResult(entries), nil
	})
}

func addSearchTool(s *server.MCPServer, b *broker.Broker) {
	tool := mcp.NewTool("rlm_search",
		mcp.WithDescription("Full-text search over indexed chunk identifiers and content, ranked by BM25."),
		mcp.WithString("query", mcp.Required(), mcp.Description("FTS5 match query")),
		mcp.WithNumber("limit", mcp.Description("maximum results (default 20, max 200)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := argsOf(request)
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		query, _ := args["query"].(string)
		if query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}
		limit := 20
		if lim, ok := args["limit"].(float64); ok {
			limit = clampInt(int(lim), 1, 200)
		}
		results, err := b.SearchFullText(query, limit)
		if err != nil {
			return errResult(err)
		}
		return stringResult(results), nil
	})
}

func addResolveTool(s *server.MCPServer, b *broker.Broker) {
	tool := mcp.NewTool("rlm_resolve",
		mcp.WithDescription("Resolve an identifier to exactly one chunk, scoped by file and optionally by kind."),
		mcp.WithString("file", mcp.Required(), mcp.Description("repo-relative file path used to scope ambiguous matches")),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("symbol identifier to resolve")),
		mcp.WithString("kind", mcp.Description("restrict resolution to this chunk kind")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := argsOf(request)
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		file, _ := args["file"].(string)
		identifier, _ := args["identifier"].(string)
		if file == "" || identifier == "" {
			return mcp.NewToolResultError("file and identifier parameters are required"), nil
		}
		kind, _ := args["kind"].(string)
		c, err := b.ResolveSymbol(file, identifier, chunk.Kind(kind))
		if err != nil {
			return errResult(err)
		}
		return stringResult(c), nil
	})
}

func addPeekTool(s *server.MCPServer, b *broker.Broker) {
	tool := mcp.NewTool("rlm_peek",
		mcp.WithDescription("Return one chunk's full content by id."),
		mcp.WithNumber("chunk_id", mcp.Required(), mcp.Description("chunk id, as returned by rlm_map/rlm_tree/rlm_search")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := argsOf(request)
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		idf, ok := args["chunk_id"].(float64)
		if !ok {
			return mcp.NewToolResultError("chunk_id parameter is required"), nil
		}
		c, err := b.Peek(int64(idf))
		if err != nil {
			return errResult(err)
		}
		return stringResult(c), nil
	})
}

func addImpactTool(s *server.MCPServer, b *broker.Broker) {
	tool := mcp.NewTool("rlm_impact",
		mcp.WithDescription("Best-effort, heuristic caller view for a symbol. Results are marked best_effort=true."),
		mcp.WithString("file", mcp.Required(), mcp.Description("repo-relative file path of the symbol's definition")),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("symbol identifier")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := argsOf(request)
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		file, _ := args["file"].(string)
		identifier, _ := args["identifier"].(string)
		if file == "" || identifier == "" {
			return mcp.NewToolResultError("file and identifier parameters are required"), nil
		}
		result, err := b.ImpactView(file, identifier)
		if err != nil {
			return errResult(err)
		}
		return stringResult(result), nil
	})
}

func selectorFromArgs(args map[string]interface{}) edit.Selector {
	identifier, _ := args["identifier"].(string)
	kind, _ := args["kind"].(string)
	sel := edit.Selector{Identifier: identifier, Kind: chunk.Kind(kind)}
	if v, ok := args["start_line"].(float64); ok {
		sel.StartLine = int(v)
	}
	if v, ok := args["end_line"].(float64); ok {
		sel.EndLine = int(v)
	}
	return sel
}

func addReplaceTool(s *server.MCPServer, b *broker.Broker) {
	tool := mcp.NewTool("rlm_replace",
		mcp.WithDescription("Replace one selected chunk's bytes with new code. Rejects edits that would leave the file unparseable and returns the rejection's error spans."),
		mcp.WithString("file", mcp.Required(), mcp.Description("repo-relative file path")),
		mcp.WithString("identifier", mcp.Description("identifier to select (or use start_line/end_line)")),
		mcp.WithString("kind", mcp.Description("restrict selection to this chunk kind")),
		mcp.WithNumber("start_line", mcp.Description("explicit selection start line (1-based)")),
		mcp.WithNumber("end_line", mcp.Description("explicit selection end line (1-based, inclusive)")),
		mcp.WithString("new_code", mcp.Required(), mcp.Description("replacement source text")),
		mcp.WithBoolean("preview", mcp.Description("compute the diff without writing (default false)")),
		mcp.WithDestructiveHintAnnotation(true),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := argsOf(request)
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		file, _ := args["file"].(string)
		newCode, _ := args["new_code"].(string)
		if file == "" || newCode == "" {
			return mcp.NewToolResultError("file and new_code parameters are required"), nil
		}
		preview, _ := args["preview"].(bool)

		result, err := b.Replace(file, selectorFromArgs(args), newCode, preview)
		if err != nil {
			return errResult(err)
		}
		return stringResult(result), nil
	})
}

func addInsertTool(s *server.MCPServer, b *broker.Broker) {
	tool := mcp.NewTool("rlm_insert",
		mcp.WithDescription("Insert new code relative to a selected container chunk, at body_start, body_end, before_line or after_line."),
		mcp.WithString("file", mcp.Required(), mcp.Description("repo-relative file path")),
		mcp.WithString("identifier", mcp.Description("container identifier to select; the container is selected by identifier only")),
		mcp.WithString("kind", mcp.Description("restrict container selection to this chunk kind")),
		mcp.WithNumber("start_line", mcp.Description("explicit line range start (1-based); a line range cannot select a container and is rejected")),
		mcp.WithNumber("end_line", mcp.Description("explicit line range end (1-based, inclusive); a line range cannot select a container and is rejected")),
		mcp.WithString("position", mcp.Description("body_start, body_end (default), before_line or after_line")),
		mcp.WithNumber("line", mcp.Description("line number for before_line/after_line positions")),
		mcp.WithString("code", mcp.Required(), mcp.Description("source text to insert")),
		mcp.WithBoolean("preview", mcp.Description("compute the diff without writing (default false)")),
		mcp.WithDestructiveHintAnnotation(true),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := argsOf(request)
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		file, _ := args["file"].(string)
		code, _ := args["code"].(string)
		if file == "" || code == "" {
			return mcp.NewToolResultError("file and code parameters are required"), nil
		}
		preview, _ := args["preview"].(bool)

		position := edit.PositionBodyEnd
		if p, ok := args["position"].(string); ok {
			switch p {
			case "body_start":
				position = edit.PositionBodyStart
			case "before_line":
				position = edit.PositionBeforeLine
			case "after_line":
				position = edit.PositionAfterLine
			case "", "body_end":
				position = edit.PositionBodyEnd
			default:
				return mcp.NewToolResultError(fmt.Sprintf("unknown position %q", p)), nil
			}
		}
		line := 0
		if v, ok := args["line"].(float64); ok {
			line = int(v)
		}

		result, err := b.Insert(file, selectorFromArgs(args), edit.InsertAt{Position: position, Line: line}, code, preview)
		if err != nil {
			return errResult(err)
		}
		return stringResult(result), nil
	})
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
