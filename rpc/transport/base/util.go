package base

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"github.com/ValentinKolb/dCaesar/rpc/transport"
	"io"
	"net"
	"sync"
	"time"
)

// connection wraps a net.Conn with optional deadlines and error classification
type connection struct {
	conn      net.Conn
	timeout   time.Duration
	closeOnce sync.Once
	closeErr  error
}

// NewConnection wraps an established net.Conn. If timeoutSecond > 0 every
// Send and Receive gets a deadline of that length.
func NewConnection(conn net.Conn, timeoutSecond int64) transport.IConnection {
	return &connection{
		conn:    conn,
		timeout: time.Duration(timeoutSecond) * time.Second,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IConnection)
// --------------------------------------------------------------------------

func (c *connection) Send(b []byte) (int, error) {
	if c.timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, fmt.Errorf("%w: failed to set write deadline: %w", common.ErrTransfer, err)
		}
	}

	n, err := c.conn.Write(b)
	if err != nil {
		return n, fmt.Errorf("%w: send: %w", common.ErrTransfer, err)
	}
	return n, nil
}

func (c *connection) Receive(buf []byte) (int, error) {
	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, fmt.Errorf("%w: failed to set read deadline: %w", common.ErrTransfer, err)
		}
	}

	n, err := c.conn.Read(buf)
	if err != nil {
		return n, fmt.Errorf("%w: receive: %w", common.ErrTransfer, err)
	}
	return n, nil
}

func (c *connection) ReceiveFull(buf []byte) (int, error) {
	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, fmt.Errorf("%w: failed to set read deadline: %w", common.ErrTransfer, err)
		}
	}

	n, err := io.ReadFull(c.conn, buf)
	if errors.Is(err, io.ErrUnexpectedEOF) || (errors.Is(err, io.EOF) && len(buf) > 0) {
		return n, fmt.Errorf("%w: short response: got %d of %d bytes", common.ErrTransfer, n, len(buf))
	}
	if err != nil {
		return n, fmt.Errorf("%w: receive: %w", common.ErrTransfer, err)
	}
	return n, nil
}

func (c *connection) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
