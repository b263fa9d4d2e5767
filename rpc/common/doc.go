// Package common provides core data structures and utilities shared across
// the dCaesar server, worker and client. It defines the wire record, the error
// taxonomy, configuration structures and the logging setup.
//
// Key Components:
//
//   - CipherRequest: The two-field record (message, shift_val) a client sends.
//     The response is the raw ciphertext with the same length as the message,
//     see ExpectedResponseSize.
//
//   - Errors: Sentinel errors (ErrEndpoint, ErrConnect, ErrTransfer,
//     ErrMalformedMessage, ErrShiftParse, ...) that every rpc package wraps,
//     so failures can be classified with errors.Is.
//
//   - ServerConfig / ClientConfig: Configuration for the server and the client,
//     with a readable String() rendering that is logged on startup.
//
//   - Logger: Custom logging implementation plugged into Dragonboat's logger
//     registry, so every package gets its logger via logger.GetLogger(name).
package common
