package serializer

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"unicode/utf8"
)

// NewGOBSerializer creates a new serializer using Go's binary gob format.
// gob sends the field names with the type description, so the record stays
// self-describing. It cannot tell a missing field from an empty one.
func NewGOBSerializer() IRPCSerializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements the IRPCSerializer interface using gob encoding
type gobSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) GetName() string {
	return "gob"
}

func (g gobSerializerImpl) Serialize(req common.CipherRequest) ([]byte, error) {
	if err := checkText(req); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(req); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobSerializerImpl) Deserialize(b []byte, req *common.CipherRequest) error {
	buf := bytes.NewBuffer(b)
	dec := gob.NewDecoder(buf)

	var decoded common.CipherRequest
	if err := dec.Decode(&decoded); err != nil {
		return malformed("decode gob", err)
	}
	if buf.Len() != 0 {
		return fmt.Errorf("%w: trailing data after gob record", common.ErrMalformedMessage)
	}
	if !utf8.ValidString(decoded.Message) || !utf8.ValidString(decoded.ShiftVal) {
		return fmt.Errorf("%w: request is not valid utf-8", common.ErrMalformedMessage)
	}

	*req = decoded
	return nil
}
