// Package rpc contains the communication layer of dCaesar: everything needed
// to move a cipher request from a client process to an isolated worker and the
// ciphertext back.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures used across the RPC system, including the
//     CipherRequest record, the error taxonomy, configuration structures and logging.
//
//   - transport: Connection abstractions with a pluggable implementation
//     (unix domain stream sockets).
//
//   - serializer: Request serialization with multiple format options (JSON, YAML, GOB).
//
//   - client: The one-shot client running a single exchange per connection.
//
//   - server: The accept loop, the worker body and the worker lifecycle
//     (spawning and reaping).
//
// A complete exchange looks like this:
//
//	client                              server / worker
//	  | Connect ----------------------->  | Accept, start worker
//	  | Send(serialized request) ------>  | Receive (single read)
//	  |                                   | Decode, parse shift, encrypt
//	  | ReceiveFull(len(message)) <-----  | Send(ciphertext)
//	  | Close, decrypt locally            | Close, exit
package rpc
