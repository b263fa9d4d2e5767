// Package cmd implements the command-line interface of dCaesar. It provides a
// hierarchical command structure for running the server and talking to it.
//
// The package is organized into several subpackages:
//
//   - serve: The server command and the hidden worker command it starts per connection
//   - client: The one-shot client command (send, receive, decrypt, print)
//   - bench: Load generator measuring exchange latency against a running server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set as DCAESAR_<FLAG> in the environment or in a .env
// file. See dcaesar -help for a list of all commands.
package cmd
