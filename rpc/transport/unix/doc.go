// Package unix implements the dCaesar transport layer using Unix domain stream
// sockets. The endpoint is a filesystem path that the server claims and the
// client is given out-of-band.
//
// This package extends the base transport layer with Unix socket-specific
// connectors while inheriting the connection handling and error classification
// from the base package.
//
// Key Components:
//
//   - clientConnector: Dials the socket path. A missing path is reported as
//     common.ErrNoSuchEndpoint, a path without listener as
//     common.ErrConnectionRefused.
//
//   - serverConnector: Removes a stale socket file, then creates, binds and
//     listens with an explicit backlog. The socket is close-on-exec, so worker
//     processes never hold the listening endpoint. Closing the listener removes
//     the socket file.
package unix
