// Package mcpserver adapts the broker's flat in-process surface to the
// Model Context Protocol, so agent clients speaking MCP over stdio can
// index, query and surgically edit a repository. Like internal/cli, it is a
// thin, illustrative collaborator: argument parsing and JSON shaping live
// here, never in internal/broker or the packages it wires.
package mcpserver

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/outpost-dev/rlm/internal/broker"
)

// Server wraps a Broker with the MCP tool registrations that expose it.
type Server struct {
	broker *broker.Broker
	mcp    *server.MCPServer
}

// New builds a Server over an already-open Broker and registers every tool.
func New(b *broker.Broker) *Server {
	mcpServer := server.NewMCPServer(
		"rlm-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &Server{broker: b, mcp: mcpServer}
	addIndexTool(mcpServer, b)
	addMapTool(mcpServer, b)
	addTreeTool(mcpServer, b)
	addSearchTool(mcpServer, b)
	addResolveTool(mcpServer, b)
	addPeekTool(mcpServer, b)
	addImpactTool(mcpServer, b)
	addReplaceTool(mcpServer, b)
	addInsertTool(mcpServer, b)
	return s
}

// Serve runs the MCP server on stdio until ctx is cancelled or a shutdown
// signal arrives.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("mcp server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		cancel()
		return nil
	case err := <-errCh:
		cancel()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the underlying broker's resources.
func (s *Server) Close() error { return s.broker.Close() }
