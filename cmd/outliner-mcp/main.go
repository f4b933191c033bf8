package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/alucardeht/outliner/internal/app"
	"github.com/alucardeht/outliner/internal/config"
	"github.com/alucardeht/outliner/internal/daemon"
	"github.com/alucardeht/outliner/internal/logger"
	"github.com/alucardeht/outliner/internal/mcp"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.Load()

	fs := flag.NewFlagSet("outliner-mcp", flag.ContinueOnError)
	listen := fs.Bool("socket", false, "serve on a unix socket instead of stdin/stdout")
	socketPath := fs.String("socket-path", cfg.SocketPath, "socket to listen on with -socket")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	logger.Init(cfg.Logger())

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to ensure directories: %v\n", err)
		return 1
	}

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(a.Registry, cfg.ToolTimeout)

	if *listen {
		d := daemon.New(*socketPath, func(ctx context.Context, conn net.Conn) error {
			return server.Serve(ctx, conn)
		})
		if err := d.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Daemon error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := server.ServeStdio(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		return 1
	}
	return 0
}
