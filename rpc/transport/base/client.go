package base

import (
	"fmt"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"github.com/ValentinKolb/dCaesar/rpc/transport"
	"net"
	"time"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	// Errors must wrap common.ErrConnect or one of its refinements
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientTransport implements the core client transport functionality
// independent of the specific transport medium
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig
	conn      transport.IConnection
}

// -----------------------------------------------------------
// Transport Factory Method (used for unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector: connector,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if config.Endpoint == "" {
		return fmt.Errorf("%w: no endpoint provided", common.ErrConnect)
	}
	if t.conn != nil {
		return fmt.Errorf("%w: transport is already connected", common.ErrConnect)
	}

	// Store the config
	t.config = config

	conn, err := t.connector.Connect(config.Endpoint, time.Duration(config.TimeoutSecond)*time.Second)
	if err != nil {
		return err
	}

	t.conn = NewConnection(conn, config.TimeoutSecond)
	Logger.Debugf("Connected to %s using %s transport", config.Endpoint, t.connector.GetName())
	return nil
}

func (t *clientTransport) Send(b []byte) (int, error) {
	if t.conn == nil {
		return 0, errNotConnected
	}
	return t.conn.Send(b)
}

func (t *clientTransport) Receive(buf []byte) (int, error) {
	if t.conn == nil {
		return 0, errNotConnected
	}
	return t.conn.Receive(buf)
}

func (t *clientTransport) ReceiveFull(buf []byte) (int, error) {
	if t.conn == nil {
		return 0, errNotConnected
	}
	return t.conn.ReceiveFull(buf)
}

// Close closes the connection, after that the transport can connect again
func (t *clientTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

var errNotConnected = fmt.Errorf("%w: transport is not connected", common.ErrTransfer)
