// Package base provides a foundation for transport layers in dCaesar,
// implementing the connection handling independent of the specific medium.
// It serves as a base layer that can be extended with medium-specific
// connectors.
//
// The package focuses on:
//   - Medium-agnostic client and server transport implementations
//   - One-shot connections: exactly one request and one response each
//   - Error classification onto the common error taxonomy
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for medium-specific operations
//     that allow extending the base transport with different socket types.
//
//   - clientTransport: Opens the single client connection and moves the request
//     and the response over it.
//
//   - serverTransport: Owns the listener and hands out accepted connections.
//     An accept interrupted by a signal (EINTR) is retried, any other failure is
//     returned to the caller as fatal.
//
//   - NewConnection: Wraps an accepted or dialed net.Conn with Send, Receive,
//     ReceiveFull and an idempotent Close. Used by the client and by workers.
//
// Framing:
//
//	There is none. Send is one write, Receive is one read of up to the caller's
//	buffer. The request is a self-describing record that fits the server's
//	request buffer; the response has exactly the length of the request message,
//	which the client reads with ReceiveFull.
//
// Deadlines:
//
//	When TimeoutSecond is above zero every Send and Receive sets a deadline.
//	With zero, operations block until they complete or the OS reports an error.
package base
