// Package server implements the cipher server of dCaesar. The server owns the
// listening endpoint and hands every accepted connection to an isolated worker
// that runs exactly one exchange: receive the request, encrypt the message,
// send the ciphertext, close.
//
// Key Components:
//
//   - NewRPCServer: Factory function creating a server with the specified
//     transport and serializer.
//
//   - RPCServer.Serve: Binds the endpoint and runs the accept loop until the
//     context is cancelled. Accept failures other than an interrupted call end
//     the loop with an error.
//
//   - HandleConnection: The worker body. It is shared by both isolation modes.
//
//   - ServeInheritedConn: Entry point of a worker process (`dcaesar worker`),
//     which inherits its connection as descriptor 3 (WorkerConnFD).
//
// Isolation Modes:
//
//   - process (default): every connection gets a freshly started worker process.
//     The worker receives the connection and nothing else, the listening socket
//     is close-on-exec. Exited workers are collected by a reaper goroutine that
//     runs on SIGCHLD and calls wait4 with WNOHANG until nothing is left to collect.
//     A crashing worker cannot affect the server or any other exchange.
//
//   - goroutine: every connection gets its own goroutine with a recover boundary.
//     Cheaper, but a worker shares the address space of the server.
//
// Worker processes are configured through the environment (EnvSerializer,
// EnvBufferSize, EnvTimeout, EnvLogLevel) and report their result with the
// exit codes ExitOK, ExitFailure and ExitMalformed.
//
// Usage Example:
//
//	s := server.NewRPCServer(
//	  common.ServerConfig{Endpoint: "/tmp/dcaesar.sock"},
//	  unix.NewUnixServerTransport(),
//	  serializer.NewJSONSerializer(),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	if err := s.Serve(ctx); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Metrics:
//
//	The server counts accepted connections, started, finished and failed workers
//	and malformed requests with VictoriaMetrics/metrics. Set
//	ServerConfig.MetricsEndpoint to expose them in prometheus format.
package server
