// Package client implements the client side of a dCaesar exchange.
//
// An exchange is one connection: the client sends a single serialized
// common.CipherRequest, reads exactly as many bytes as the message is long and
// closes. The server never answers with anything but the ciphertext, so the
// client decrypts it with the inverse shift (cipher.Decrypt) to show the round
// trip.
//
// Usage Example:
//
//	c := client.NewRPCCipherClient(
//	  common.ClientConfig{Endpoint: "/tmp/dcaesar.sock", TimeoutSecond: 5},
//	  unix.NewUnixClientTransport(),
//	  serializer.NewJSONSerializer(),
//	)
//
//	res, err := c.Exchange("Hello World", "3")
//	if err != nil {
//	  log.Fatal(err)
//	}
//	fmt.Println(string(res.Ciphertext)) // Khoor Zruog
//	fmt.Println(string(res.Plaintext))  // Hello World
//
// Errors wrap the sentinels of the common package: common.ErrShiftParse for an
// invalid shift (detected before connecting), common.ErrConnect and its
// refinements when the server cannot be reached and common.ErrTransfer when
// sending or receiving fails.
package client
