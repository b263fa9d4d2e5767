package serializer

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"gopkg.in/yaml.v3"
	"io"
	"unicode/utf8"
)

// NewYAMLSerializer creates a new serializer using yaml encoding
func NewYAMLSerializer() IRPCSerializer {
	return &yamlSerializerImpl{}
}

// yamlSerializerImpl implements the IRPCSerializer interface using yaml encoding
type yamlSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (y yamlSerializerImpl) GetName() string {
	return "yaml"
}

func (y yamlSerializerImpl) Serialize(req common.CipherRequest) ([]byte, error) {
	if err := checkText(req); err != nil {
		return nil, err
	}
	return yaml.Marshal(req)
}

func (y yamlSerializerImpl) Deserialize(b []byte, req *common.CipherRequest) error {
	if !utf8.Valid(b) {
		return fmt.Errorf("%w: request is not valid utf-8", common.ErrMalformedMessage)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var w wireRequest
	if err := dec.Decode(&w); err != nil {
		return malformed("decode yaml", err)
	}

	// exactly one document
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after yaml document", common.ErrMalformedMessage)
	}

	return w.toRequest(req)
}
