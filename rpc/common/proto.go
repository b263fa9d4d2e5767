package common

import (
	"github.com/ValentinKolb/dCaesar/lib/cipher"
)

// --------------------------------------------------------------------------
// Request Structure
// --------------------------------------------------------------------------

// CipherRequest is the only message a client sends. It is a two-field record,
// both fields are text and both must be present on the wire.
type CipherRequest struct {
	// Message is the plaintext the server encrypts
	Message string `json:"message" yaml:"message"`
	// ShiftVal is the shift as a base-10 integer in text form
	ShiftVal string `json:"shift_val" yaml:"shift_val"`
}

// NewCipherRequest creates a new request from the raw client arguments
func NewCipherRequest(message, shiftVal string) *CipherRequest {
	return &CipherRequest{
		Message:  message,
		ShiftVal: shiftVal,
	}
}

// Shift parses ShiftVal. The returned error wraps ErrShiftParse.
func (r *CipherRequest) Shift() (int64, error) {
	return cipher.ParseShift(r.ShiftVal)
}

// --------------------------------------------------------------------------
// Response Contract
// --------------------------------------------------------------------------

// CipherResponse is the raw ciphertext. There is no envelope and no length
// prefix; the receiver knows the size from its own request.
type CipherResponse []byte

// ExpectedResponseSize returns the exact number of bytes the server answers
// req with. The cipher is length preserving, so this is the byte length of the
// message. Any change to the response format must change this function first.
func ExpectedResponseSize(req *CipherRequest) int {
	return len(req.Message)
}

// NewCipherResponse encrypts the request message. The shift must already be
// parsed from the request.
func NewCipherResponse(req *CipherRequest, shift int64) CipherResponse {
	return cipher.Encrypt([]byte(req.Message), shift)
}
