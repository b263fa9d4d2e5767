package serializer

import (
	"fmt"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"strings"
	"unicode/utf8"
)

// IRPCSerializer is the interface for all request serializers
type IRPCSerializer interface {
	// GetName returns the name used to select the serializer (e.g. "json")
	GetName() string
	// Serialize serializes a CipherRequest into a byte array
	// It returns the serialized byte array and an error if any
	Serialize(req common.CipherRequest) ([]byte, error)
	// Deserialize deserializes a byte array into a CipherRequest
	// It takes a byte array and a pointer to a CipherRequest as parameters
	// Every failure wraps common.ErrMalformedMessage
	Deserialize(b []byte, req *common.CipherRequest) error
}

// Names lists all available serializers, the first one is the default
var Names = []string{"json", "yaml", "gob"}

// NewSerializer creates a serializer by name
func NewSerializer(name string) (IRPCSerializer, error) {
	switch strings.ToLower(name) {
	case "json":
		return NewJSONSerializer(), nil
	case "yaml":
		return NewYAMLSerializer(), nil
	case "gob":
		return NewGOBSerializer(), nil
	default:
		return nil, fmt.Errorf("invalid serializer %s (expected one of %s)", name, strings.Join(Names, ", "))
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// wireRequest is the decoding target for the text formats. The pointer fields
// tell a missing key apart from an empty value.
type wireRequest struct {
	Message  *string `json:"message" yaml:"message"`
	ShiftVal *string `json:"shift_val" yaml:"shift_val"`
}

// toRequest checks that both fields were present and copies them into req
func (w *wireRequest) toRequest(req *common.CipherRequest) error {
	if w.Message == nil {
		return fmt.Errorf("%w: missing field \"message\"", common.ErrMalformedMessage)
	}
	if w.ShiftVal == nil {
		return fmt.Errorf("%w: missing field \"shift_val\"", common.ErrMalformedMessage)
	}
	req.Message = *w.Message
	req.ShiftVal = *w.ShiftVal
	return nil
}

// checkText rejects a request that is not valid utf-8 text. Such a request
// cannot be encoded byte for byte by every format.
func checkText(req common.CipherRequest) error {
	if !utf8.ValidString(req.Message) {
		return fmt.Errorf("%w: message is not valid utf-8", common.ErrMalformedMessage)
	}
	if !utf8.ValidString(req.ShiftVal) {
		return fmt.Errorf("%w: shift_val is not valid utf-8", common.ErrMalformedMessage)
	}
	return nil
}

func malformed(format string, err error) error {
	return fmt.Errorf("%w: "+format+": %v", common.ErrMalformedMessage, err)
}
