// Package mcp serves the tool registry as a JSON-RPC 2.0 endpoint over a
// byte stream, one JSON object per message.
package mcp

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/alucardeht/outliner/internal/tools"
)

const DefaultToolTimeout = 30 * time.Second

type Server struct {
	registry *tools.Registry
	handler  *Handler
}

func NewServer(registry *tools.Registry, toolTimeout time.Duration) *Server {
	if toolTimeout <= 0 {
		toolTimeout = DefaultToolTimeout
	}
	return &Server{
		registry: registry,
		handler:  NewHandler(registry, toolTimeout),
	}
}

func (s *Server) Registry() *tools.Registry {
	return s.registry
}

func (s *Server) Handler() *Handler {
	return s.handler
}

// Serve handles requests on rwc until the peer disconnects or ctx ends.
// Requests are handled concurrently.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.PlainObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.AsyncHandler(jsonrpc2.HandlerWithError(s.handler.Handle)))

	log.Info("server started", "tools", len(s.registry.Names()))

	select {
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	case <-conn.DisconnectNotify():
		log.Info("client disconnected")
		return nil
	}
}

// ServeStdio serves on the process's standard input and output.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, stdio{})
}

type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func (stdio) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
