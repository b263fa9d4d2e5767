package cipher

// AlphabetSize is the number of letters each case is rotated within
const AlphabetSize = 26

// --------------------------------------------------------------------------
// Shift normalization
// --------------------------------------------------------------------------

// Normalize reduces any shift to the effective shift in 0..25
func Normalize(shift int64) int {
	return int(((shift % AlphabetSize) + AlphabetSize) % AlphabetSize)
}

// DecryptShift returns the effective shift that reverses Normalize(shift).
//
// The complement is computed as 26 - effective. For an effective shift of 0 this
// yields a full cycle of 26, which is the identity just like 0. The final modulo
// folds that case back to 0 so the result always lies in 0..25.
func DecryptShift(shift int64) int {
	return (AlphabetSize - Normalize(shift)) % AlphabetSize
}

// --------------------------------------------------------------------------
// Transform
// --------------------------------------------------------------------------

// Encrypt rotates all ASCII letters in msg forward by the effective shift.
// The input is not modified.
func Encrypt(msg []byte, shift int64) []byte {
	return Apply(msg, Normalize(shift))
}

// Decrypt reverses Encrypt for the same shift
func Decrypt(msg []byte, shift int64) []byte {
	return Apply(msg, DecryptShift(shift))
}

// Apply rotates every ASCII letter in msg by an effective shift that must
// already be reduced to 0..25. Whitespace and all other bytes are copied as is.
func Apply(msg []byte, effective int) []byte {
	result := make([]byte, len(msg))
	by := byte(effective)

	for i, c := range msg {
		switch {
		case isASCIIWhitespace(c):
			result[i] = c
		case c >= 'A' && c <= 'Z':
			result[i] = (c-'A'+by)%AlphabetSize + 'A'
		case c >= 'a' && c <= 'z':
			result[i] = (c-'a'+by)%AlphabetSize + 'a'
		default:
			result[i] = c
		}
	}

	return result
}

// isASCIIWhitespace matches space, \t, \n, \v, \f and \r
func isASCIIWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
