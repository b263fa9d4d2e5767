// Package serializer provides the message codec for the dCaesar request record.
// It defines a common interface and multiple implementations for turning a
// common.CipherRequest into bytes and back.
//
// Every implementation produces a self-describing record: field names travel
// with the values, so two variable-length text fields need no length prefix.
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//
//   - jsonSerializerImpl: The default. Produces {"message":"...","shift_val":"..."}
//     and is readable with any json tooling.
//
//   - yamlSerializerImpl: Produces a two-key yaml document, handy when typing
//     requests by hand (e.g. with socat).
//
//   - gobSerializerImpl: Go's gob encoding. Field names are part of the type
//     descriptor, but a missing field cannot be told apart from an empty one.
//
// Failure Handling:
//
//	Deserialize wraps every failure in common.ErrMalformedMessage: invalid
//	utf-8, syntax errors, truncated input, trailing data, missing fields and
//	(for json and yaml) unknown fields. A worker receiving such a request ends
//	its exchange without a response.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
package serializer
