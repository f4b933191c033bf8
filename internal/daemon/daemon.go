// Package daemon serves the tool server on a unix socket so that several
// clients can share one loaded catalog and history store.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/alucardeht/outliner/internal/logger"
)

var log = logger.ForComponent("daemon")

// ConnHandler serves one client connection until it disconnects or ctx ends.
type ConnHandler func(ctx context.Context, conn net.Conn) error

type Daemon struct {
	socketPath string
	lock       *LockFile
	handle     ConnHandler

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
	ready    chan struct{}
}

// New prepares a daemon listening on socketPath. The lock file lives next
// to the socket.
func New(socketPath string, handle ConnHandler) *Daemon {
	return &Daemon{
		socketPath: socketPath,
		lock:       NewLockFile(socketPath + ".lock"),
		handle:     handle,
		conns:      make(map[net.Conn]struct{}),
		ready:      make(chan struct{}),
	}
}

func (d *Daemon) SocketPath() string {
	return d.socketPath
}

// Ready is closed once the socket accepts connections.
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

// Connections reports the number of clients currently connected.
func (d *Daemon) Connections() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

// Run accepts connections until ctx ends, then closes every client and
// removes the socket. It fails with ErrLockHeld when another daemon owns
// the socket path.
func (d *Daemon) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(d.socketPath), 0700); err != nil {
		return fmt.Errorf("failed to create socket dir: %w", err)
	}
	if err := d.lock.Acquire(); err != nil {
		return err
	}
	defer d.lock.Release()

	if err := os.Remove(d.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", d.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	if err := os.Chmod(d.socketPath, 0700); err != nil {
		listener.Close()
		return fmt.Errorf("failed to chmod socket: %w", err)
	}

	d.mu.Lock()
	d.listener = listener
	d.mu.Unlock()
	close(d.ready)
	log.Info("listening", "socket", d.socketPath)

	go func() {
		<-ctx.Done()
		d.shutdown()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			log.Warn("accept failed", "error", err)
			continue
		}

		d.mu.Lock()
		d.conns[conn] = struct{}{}
		d.mu.Unlock()

		d.wg.Add(1)
		go d.serve(ctx, conn)
	}

	d.shutdown()
	d.wg.Wait()
	os.Remove(d.socketPath)
	log.Info("stopped", "socket", d.socketPath)
	return nil
}

func (d *Daemon) serve(ctx context.Context, conn net.Conn) {
	defer d.wg.Done()
	defer func() {
		conn.Close()
		d.mu.Lock()
		delete(d.conns, conn)
		d.mu.Unlock()
	}()

	if err := d.handle(ctx, conn); err != nil && ctx.Err() == nil {
		log.Debug("connection ended", "error", err)
	}
}

func (d *Daemon) shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.listener != nil {
		d.listener.Close()
	}
	for conn := range d.conns {
		conn.Close()
	}
}
