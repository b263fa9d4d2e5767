package serializer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"io"
	"unicode/utf8"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IRPCSerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) GetName() string {
	return "json"
}

func (j jsonSerializerImpl) Serialize(req common.CipherRequest) ([]byte, error) {
	// Marshal would replace invalid sequences and change the message length
	if err := checkText(req); err != nil {
		return nil, err
	}
	return json.Marshal(req)
}

func (j jsonSerializerImpl) Deserialize(b []byte, req *common.CipherRequest) error {
	// the decoder would silently replace invalid sequences
	if !utf8.Valid(b) {
		return fmt.Errorf("%w: request is not valid utf-8", common.ErrMalformedMessage)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	var w wireRequest
	if err := dec.Decode(&w); err != nil {
		return malformed("decode json", err)
	}

	// exactly one record
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after json record", common.ErrMalformedMessage)
	}

	return w.toRequest(req)
}
