// Package transport defines the interfaces and abstractions for the dCaesar
// transport layer: a connection-oriented, reliable, ordered, bidirectional
// local byte stream addressed by a filesystem path.
//
// The package focuses on:
//   - Defining clear interfaces for client and server transport layers
//   - One connection per exchange, no pooling, keep-alive or multiplexing
//   - Keeping the medium pluggable (base + connector), currently unix sockets
//
// Key Components:
//
//   - IRPCServerTransport: Server side. Listen claims the endpoint, Accept hands
//     out connections and transparently retries interrupted accepts.
//
//   - IRPCClientTransport: Client side. Connect opens the single connection,
//     Send/Receive move bytes, Close releases it.
//
//   - IConnection: Send/Receive/Close on an established connection, shared by
//     the client and the server worker.
package transport
