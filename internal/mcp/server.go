// Package mcp exposes protolink navigation to coding assistants over the
// Model Context Protocol on stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/protolink/internal/session"
)

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	session *session.Session
	mcp     *server.MCPServer
	logger  *slog.Logger
}

// NewMCPServer creates a server with the protolink tools registered.
func NewMCPServer(sess *session.Session, version string, logger *slog.Logger) *MCPServer {
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		"protolink",
		version,
		server.WithToolCapabilities(true),
	)

	AddImplementationsTool(mcpServer, sess)
	AddDefinitionsTool(mcpServer, sess)
	AddAnnotationsTool(mcpServer, sess)

	return &MCPServer{
		session: sess,
		mcp:     mcpServer,
		logger:  logger,
	}
}

// Serve starts the MCP server and blocks until shutdown. With watching
// enabled, file changes invalidate cached content while the server runs.
func (s *MCPServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.session.Config.Watch.Enabled {
		stop, err := s.session.Watch(ctx)
		if err != nil {
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
		defer func() {
			if err := stop(); err != nil {
				s.logger.Warn("failed to stop file watcher", "error", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio", "root", s.session.Root)
		errLog := slog.NewLogLogger(s.logger.Handler(), slog.LevelError)
		if err := server.ServeStdio(s.mcp, server.WithErrorLogger(errLog)); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal, stopping gracefully")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
