// Package cipher implements the Caesar substitution cipher used by the dCaesar
// server and client. The transform works on raw bytes, not on code points, and
// is total: every byte sequence and every integer shift is valid input.
//
// Transform Rules:
//
//   - ASCII whitespace passes through unchanged.
//   - 'A'..'Z' rotate within the uppercase alphabet by the effective shift.
//   - 'a'..'z' rotate within the lowercase alphabet by the effective shift.
//   - Every other byte (digits, punctuation, non-ASCII bytes) passes through.
//
// Shift Handling:
//
//	The shift is always reduced modulo 26 before use. The result is called the
//	effective shift and lies in 0..25. Shifts given as text are parsed with
//	ParseShift, which also accepts values outside the int64 range by reducing
//	them through math/big, so any integer is a valid shift.
//
// Laws:
//
//   - Decrypt(Encrypt(b, s), s) == b for all b and s
//   - Encrypt(b, s) == Encrypt(b, s+26)
//   - Encrypt(b, 0) == b
//   - len(Encrypt(b, s)) == len(b)
//
// The length-preserving property is part of the wire contract: the server sends
// the ciphertext without framing and the client reads exactly len(message) bytes.
package cipher
