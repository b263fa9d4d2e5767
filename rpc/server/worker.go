package server

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"github.com/ValentinKolb/dCaesar/rpc/serializer"
	"github.com/ValentinKolb/dCaesar/rpc/transport/base"
	"github.com/lni/dragonboat/v4/logger"
	"net"
	"os"
)

var workerLogger = logger.GetLogger("worker")

// Exit codes of a worker process
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitMalformed = 2
)

// WorkerConnFD is the descriptor number under which a worker process inherits its connection
const WorkerConnFD = 3

// HandleConnection runs one exchange on conn: receive the request with a single
// read, encrypt the message and write the ciphertext back. A request that does
// not decode or carries an invalid shift is answered by closing the connection.
// conn is always closed on return.
func HandleConnection(
	conn net.Conn,
	ser serializer.IRPCSerializer,
	config common.ServerConfig,
	log logger.ILogger,
) error {
	config = config.WithDefaults()

	c := base.NewConnection(conn, config.TimeoutSecond)
	defer c.Close()

	log.Debugf("got connection from client")

	// Receive
	buf := make([]byte, config.RequestBufferSize)
	n, err := c.Receive(buf)
	if err != nil {
		return err
	}

	// Transform
	var req common.CipherRequest
	if err := ser.Deserialize(buf[:n], &req); err != nil {
		return err
	}
	shift, err := req.Shift()
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrMalformedMessage, err)
	}
	resp := common.NewCipherResponse(&req, shift)

	// Respond (an empty message has an empty ciphertext, there is nothing to write)
	sent := 0
	if len(resp) > 0 {
		sent, err = c.Send(resp)
		if err != nil {
			return err
		}
	}
	if sent != common.ExpectedResponseSize(&req) {
		return fmt.Errorf("%w: sent %d of %d bytes", common.ErrTransfer, sent, common.ExpectedResponseSize(&req))
	}

	log.Debugf("sent %d bytes", sent)
	return nil
}

// ServeInheritedConn runs the exchange of a worker process on the connection
// it inherited as descriptor fd and returns the exit code for the process.
func ServeInheritedConn(fd uintptr, ser serializer.IRPCSerializer, config common.ServerConfig) int {
	f := os.NewFile(fd, "conn")
	if f == nil {
		workerLogger.Errorf("no connection on descriptor %d", fd)
		return ExitFailure
	}

	// FileConn duplicates the descriptor, so f can be closed right away
	conn, err := net.FileConn(f)
	_ = f.Close()
	if err != nil {
		workerLogger.Errorf("descriptor %d is not a connection: %v", fd, err)
		return ExitFailure
	}

	err = HandleConnection(conn, ser, config, workerLogger)
	if err != nil {
		workerLogger.Warningf("pid %d: %v", os.Getpid(), err)
	}
	return exitCode(err)
}

// exitCode maps the result of HandleConnection to a worker exit code
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, common.ErrMalformedMessage):
		return ExitMalformed
	default:
		return ExitFailure
	}
}
