package common

import (
	"errors"
	"github.com/ValentinKolb/dCaesar/lib/cipher"
)

// --------------------------------------------------------------------------
// Error Taxonomy
// --------------------------------------------------------------------------
// All errors returned by the rpc packages wrap one of these sentinels, so callers
// can classify them with errors.Is. Only ErrMalformedMessage and ErrShiftParse
// can occur inside a worker; they end that worker and nothing else.

var (
	// ErrUsage is returned for a wrong number or shape of startup arguments
	ErrUsage = errors.New("usage error")

	// ErrEndpoint is returned when the server cannot claim, bind or listen on its address
	ErrEndpoint = errors.New("endpoint error")

	// ErrConnect is returned when the client cannot reach a listening endpoint
	ErrConnect = errors.New("connect error")

	// ErrNoSuchEndpoint is returned when nothing exists at the endpoint path (also matches ErrConnect)
	ErrNoSuchEndpoint = &connectError{"no such endpoint"}

	// ErrConnectionRefused is returned when the path exists but nobody listens (also matches ErrConnect)
	ErrConnectionRefused = &connectError{"connection refused"}

	// ErrTransfer is returned when a send, receive or accept fails at the transport level
	ErrTransfer = errors.New("transfer error")

	// ErrMalformedMessage is returned when received bytes are not a well-formed request record
	ErrMalformedMessage = errors.New("malformed message")

	// ErrShiftParse is returned when shift_val is not a base-10 integer
	ErrShiftParse = cipher.ErrShiftParse
)

// connectError is a refinement of ErrConnect
type connectError struct {
	msg string
}

func (e *connectError) Error() string {
	return e.msg
}

// Is makes every refinement match ErrConnect as well
func (e *connectError) Is(target error) bool {
	return target == ErrConnect
}
