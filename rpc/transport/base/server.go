package base

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"github.com/ValentinKolb/dCaesar/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"net"
	"sync"
	"syscall"
)

var Logger = logger.GetLogger("transport/rpc")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen claims the endpoint and returns a listener with the configured backlog
	// Errors must wrap common.ErrEndpoint
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality
type serverTransport struct {
	connector IServerConnector
	config    common.ServerConfig
	listener  net.Listener
	closeOnce sync.Once
	closeErr  error
}

// -----------------------------------------------------------
// Transport Factory Method (used for unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport with the specified connector
func NewBaseServerTransport(connector IServerConnector) transport.IRPCServerTransport {
	return &serverTransport{
		connector: connector,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) Listen(config common.ServerConfig) error {
	t.config = config

	// Create listener using the connector
	listener, err := t.connector.Listen(config)
	if err != nil {
		return err
	}
	t.listener = listener

	Logger.Infof("Listening on %s socket %s (backlog %d)", t.connector.GetName(), config.Endpoint, config.Backlog)
	return nil
}

func (t *serverTransport) Accept() (net.Conn, error) {
	if t.listener == nil {
		return nil, fmt.Errorf("%w: accept called before listen", common.ErrEndpoint)
	}

	for {
		conn, err := t.listener.Accept()
		if err == nil {
			return conn, nil
		}

		// Case interrupted: retry transparently
		if errors.Is(err, syscall.EINTR) {
			Logger.Debugf("Accept interrupted, retrying")
			continue
		}

		// Case closed: the caller stopped listening
		if errors.Is(err, net.ErrClosed) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: accept: %w", common.ErrTransfer, err)
	}
}

func (t *serverTransport) Addr() string {
	return t.config.Endpoint
}

func (t *serverTransport) Close() error {
	t.closeOnce.Do(func() {
		if t.listener != nil {
			t.closeErr = t.listener.Close()
			Logger.Infof("Stopped listening on %s", t.config.Endpoint)
		}
	})
	return t.closeErr
}
