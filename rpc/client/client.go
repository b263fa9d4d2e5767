package client

import (
	"fmt"
	"github.com/ValentinKolb/dCaesar/lib/cipher"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"github.com/ValentinKolb/dCaesar/rpc/serializer"
	"github.com/ValentinKolb/dCaesar/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("client")
)

// ExchangeResult is everything one exchange with the server produced
type ExchangeResult struct {
	// BytesSent is the size of the serialized request
	BytesSent int
	// BytesReceived is the size of the response, always len(Ciphertext)
	BytesReceived int
	// Ciphertext is the response of the server
	Ciphertext []byte
	// Plaintext is the ciphertext decrypted locally with the inverse shift
	Plaintext []byte
}

// NewRPCCipherClient creates a new cipher client
// The function takes a config, a transport and a serializer as parameters.
// The transport is connected anew for every exchange.
func NewRPCCipherClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) *RPCCipherClient {
	return &RPCCipherClient{
		config:     config,
		transport:  transport,
		serializer: serializer,
	}
}

// RPCCipherClient runs exchanges with a cipher server. It is not safe for
// concurrent use, use one client per goroutine.
type RPCCipherClient struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// Exchange sends message and shiftVal to the server, waits for the ciphertext
// and decrypts it locally.
//
// The shift is parsed before connecting, an invalid one fails with
// common.ErrShiftParse and the server is never contacted. A response shorter
// than the message fails with common.ErrTransfer. A message that is not valid
// utf-8 fails with common.ErrMalformedMessage before connecting, no format
// could carry it without changing its length.
func (c *RPCCipherClient) Exchange(message, shiftVal string) (*ExchangeResult, error) {
	req := common.NewCipherRequest(message, shiftVal)

	shift, err := req.Shift()
	if err != nil {
		return nil, err
	}

	payload, err := c.serializer.Serialize(*req)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize request: %w", err)
	}

	// Connect
	if err := c.transport.Connect(c.config); err != nil {
		return nil, err
	}
	defer c.transport.Close()

	// Send
	sent, err := c.transport.Send(payload)
	if err != nil {
		return nil, err
	}
	Logger.Debugf("sent %d bytes to %s", sent, c.config.Endpoint)

	// Receive
	ciphertext := make([]byte, common.ExpectedResponseSize(req))
	received, err := c.transport.ReceiveFull(ciphertext)
	if err != nil {
		return nil, err
	}

	// Decrypt
	return &ExchangeResult{
		BytesSent:     sent,
		BytesReceived: received,
		Ciphertext:    ciphertext,
		Plaintext:     cipher.Decrypt(ciphertext, shift),
	}, nil
}
