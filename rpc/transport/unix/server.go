package unix

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"github.com/ValentinKolb/dCaesar/rpc/transport"
	"github.com/ValentinKolb/dCaesar/rpc/transport/base"
	sysunix "golang.org/x/sys/unix"
	"net"
	"os"
	"sync"
	"syscall"
)

// serverConnector implements the IServerConnector interface for Unix sockets
type serverConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IServerConnector)
// --------------------------------------------------------------------------

func (c *serverConnector) GetName() string {
	return "unix"
}

func (c *serverConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	socketPath := config.Endpoint
	if socketPath == "" {
		return nil, fmt.Errorf("%w: no socket path provided", common.ErrEndpoint)
	}

	// Remove existing socket file if it exists
	if err := removeStaleSocket(socketPath); err != nil {
		return nil, err
	}

	backlog := config.Backlog
	if backlog <= 0 {
		backlog = common.DefaultBacklog
	}

	// Create the socket with close-on-exec, so worker processes never inherit it.
	// The fork lock keeps a concurrent exec from seeing the fd before the flag is set.
	syscall.ForkLock.RLock()
	fd, err := sysunix.Socket(sysunix.AF_UNIX, sysunix.SOCK_STREAM, 0)
	if err == nil {
		sysunix.CloseOnExec(fd)
	}
	syscall.ForkLock.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Unix socket: %v", common.ErrEndpoint, err)
	}

	if err := sysunix.Bind(fd, &sysunix.SockaddrUnix{Name: socketPath}); err != nil {
		_ = sysunix.Close(fd)
		return nil, fmt.Errorf("%w: failed to bind %s: %v", common.ErrEndpoint, socketPath, err)
	}

	if err := sysunix.Listen(fd, backlog); err != nil {
		_ = sysunix.Close(fd)
		_ = os.Remove(socketPath)
		return nil, fmt.Errorf("%w: failed to listen on %s: %v", common.ErrEndpoint, socketPath, err)
	}

	// Hand the descriptor to the runtime poller (FileListener dups it)
	f := os.NewFile(uintptr(fd), socketPath)
	defer f.Close()

	listener, err := net.FileListener(f)
	if err != nil {
		_ = os.Remove(socketPath)
		return nil, fmt.Errorf("%w: failed to create listener for %s: %v", common.ErrEndpoint, socketPath, err)
	}

	return &socketListener{Listener: listener, path: socketPath}, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// socketListener removes the socket file when it is closed
type socketListener struct {
	net.Listener
	path      string
	closeOnce sync.Once
	closeErr  error
}

func (l *socketListener) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = l.Listener.Close()
		if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			base.Logger.Warningf("Failed to remove socket %s: %v", l.path, err)
		}
	})
	return l.closeErr
}

// removeStaleSocket removes a leftover socket file at path. Anything that is
// not a socket is left alone and reported, so a typo never deletes a regular file.
func removeStaleSocket(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to stat %s: %v", common.ErrEndpoint, path, err)
	}

	if info.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("%w: %s exists and is not a socket", common.ErrEndpoint, path)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: failed to remove existing socket: %v", common.ErrEndpoint, err)
	}
	base.Logger.Debugf("Removed stale socket %s", path)
	return nil
}

// --------------------------------------------------------------------------
// Server Transport Factory Method
// --------------------------------------------------------------------------

// NewUnixServerTransport creates a new Unix server transport
func NewUnixServerTransport() transport.IRPCServerTransport {
	return base.NewBaseServerTransport(&serverConnector{})
}
