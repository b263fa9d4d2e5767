package transport

import (
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"net"
)

// --------------------------------------------------------------------------
// Connection
// --------------------------------------------------------------------------

// IConnection is one end of an established one-shot connection
type IConnection interface {
	// Send does a single write of b and returns the number of bytes written
	Send(b []byte) (int, error)
	// Receive does a single read of up to len(buf) bytes
	Receive(buf []byte) (int, error)
	// ReceiveFull reads exactly len(buf) bytes or fails
	ReceiveFull(buf []byte) (int, error)
	// Close releases the connection, calls after the first one are no-ops
	Close() error
}

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// IRPCServerTransport is the interface for the server side of the transport layer
// It must accept a ServerConfig as a parameter
type IRPCServerTransport interface {
	// Listen claims the endpoint and starts accepting into the backlog
	Listen(config common.ServerConfig) error
	// Accept blocks until the next connection is available
	// Interrupted accepts are retried, a closed listener returns net.ErrClosed
	Accept() (net.Conn, error)
	// Addr returns the endpoint the transport listens on
	Addr() string
	// Close stops listening and releases the endpoint
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Connect opens the one connection used for the exchange
	Connect(config common.ClientConfig) error
	IConnection
}
