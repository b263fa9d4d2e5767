package serializer

import (
	"errors"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"reflect"
	"testing"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON": NewJSONSerializer,
	"YAML": NewYAMLSerializer,
	"GOB":  NewGOBSerializer,
}

// testRequests creates a set of requests covering the interesting field contents
func testRequests() []common.CipherRequest {
	return []common.CipherRequest{
		// classic example
		{Message: "Hello World", ShiftVal: "3"},

		// negative and large shifts stay text
		{Message: "abc", ShiftVal: "-3"},
		{Message: "abc", ShiftVal: "123456789012345678901234567890"},

		// empty values are allowed when the key is present
		{Message: "", ShiftVal: "0"},

		// quotes, punctuation and non-ascii text
		{Message: `say "hi": {ok}, [1, 2] # not a comment`, ShiftVal: "7"},
		{Message: "grüße, 世界", ShiftVal: "26"},

		// whitespace inside the message
		{Message: "tabs\tand\nnewlines", ShiftVal: "1"},
	}
}

// TestSerializerRoundTrip tests that requests can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	requests := testRequests()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, req := range requests {
				// Serialize
				data, err := serializer.Serialize(req)
				if err != nil {
					t.Errorf("Failed to serialize request %d: %v", i, err)
					continue
				}

				// Deserialize
				var result common.CipherRequest
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize request %d: %v", i, err)
					continue
				}

				// Compare
				if !reflect.DeepEqual(req, result) {
					t.Errorf("Request %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, req, result)
				}
			}
		})
	}
}

// TestSerializeRejectsInvalidUTF8 tests that no format changes the bytes of a non-text message
func TestSerializeRejectsInvalidUTF8(t *testing.T) {
	requests := []common.CipherRequest{
		{Message: "ab\xffcd", ShiftVal: "1"},
		{Message: "\xc3", ShiftVal: "1"},
		{Message: "abc", ShiftVal: "1\xff"},
	}

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()
			for i, req := range requests {
				data, err := serializer.Serialize(req)
				if !errors.Is(err, common.ErrMalformedMessage) {
					t.Errorf("Request %d: expected ErrMalformedMessage, got %v", i, err)
				}
				if data != nil {
					t.Errorf("Request %d: expected no data, got %q", i, data)
				}
			}
		})
	}
}

// TestJSONWireFormat tests that the json record uses the documented field names
func TestJSONWireFormat(t *testing.T) {
	data, err := NewJSONSerializer().Serialize(common.CipherRequest{Message: "Hello World", ShiftVal: "3"})
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}

	expected := `{"message":"Hello World","shift_val":"3"}`
	if string(data) != expected {
		t.Errorf("Unexpected wire format:\nexpected: %s\ngot:      %s", expected, data)
	}
}

// TestYAMLWireFormat tests that hand written yaml records are accepted
func TestYAMLWireFormat(t *testing.T) {
	var req common.CipherRequest
	err := NewYAMLSerializer().Deserialize([]byte("message: Hello World\nshift_val: 3\n"), &req)
	if err != nil {
		t.Fatalf("Failed to deserialize: %v", err)
	}
	if req.Message != "Hello World" || req.ShiftVal != "3" {
		t.Errorf("Unexpected request: %+v", req)
	}
}

// TestMalformedJSON tests that broken json records are rejected as malformed
func TestMalformedJSON(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"Empty data", []byte{}},
		{"Not json", []byte("hello")},
		{"Truncated", []byte(`{"message":"Hello World","shift_`)},
		{"Missing message", []byte(`{"shift_val":"3"}`)},
		{"Missing shift", []byte(`{"message":"Hello"}`)},
		{"Null field", []byte(`{"message":null,"shift_val":"3"}`)},
		{"Wrong type", []byte(`{"message":"Hello","shift_val":3}`)},
		{"Unknown field", []byte(`{"message":"Hello","shift_val":"3","extra":true}`)},
		{"Two records", []byte(`{"message":"a","shift_val":"1"}{"message":"b","shift_val":"2"}`)},
		{"Array", []byte(`["Hello","3"]`)},
		{"Invalid utf-8", []byte("{\"message\":\"\xff\xfe\",\"shift_val\":\"3\"}")},
	}

	serializer := NewJSONSerializer()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var req common.CipherRequest
			err := serializer.Deserialize(tc.data, &req)
			if !errors.Is(err, common.ErrMalformedMessage) {
				t.Errorf("Expected ErrMalformedMessage, got %v", err)
			}
		})
	}
}

// TestMalformedYAML tests that broken yaml records are rejected as malformed
func TestMalformedYAML(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"Empty data", []byte{}},
		{"Scalar", []byte("hello")},
		{"Missing message", []byte("shift_val: \"3\"\n")},
		{"Missing shift", []byte("message: Hello\n")},
		{"Unknown field", []byte("message: Hello\nshift_val: \"3\"\nextra: true\n")},
		{"Two documents", []byte("message: a\nshift_val: \"1\"\n---\nmessage: b\nshift_val: \"2\"\n")},
		{"Broken syntax", []byte("message: [unclosed\n")},
	}

	serializer := NewYAMLSerializer()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var req common.CipherRequest
			err := serializer.Deserialize(tc.data, &req)
			if !errors.Is(err, common.ErrMalformedMessage) {
				t.Errorf("Expected ErrMalformedMessage, got %v", err)
			}
		})
	}
}

// TestMalformedGOB tests that broken gob streams are rejected as malformed
func TestMalformedGOB(t *testing.T) {
	serializer := NewGOBSerializer()
	valid, err := serializer.Serialize(common.CipherRequest{Message: "Hello", ShiftVal: "3"})
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}

	testCases := []struct {
		name string
		data []byte
	}{
		{"Empty data", []byte{}},
		{"Short message", []byte{0x05, 0x01, 0x02}},
		{"Truncated", valid[:len(valid)-3]},
		{"Trailing data", append(append([]byte{}, valid...), 'x')},
		{"Json instead of gob", []byte(`{"message":"Hello","shift_val":"3"}`)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var req common.CipherRequest
			err := serializer.Deserialize(tc.data, &req)
			if !errors.Is(err, common.ErrMalformedMessage) {
				t.Errorf("Expected ErrMalformedMessage, got %v", err)
			}
		})
	}
}

// TestNewSerializer tests lookup by name
func TestNewSerializer(t *testing.T) {
	for _, name := range Names {
		s, err := NewSerializer(name)
		if err != nil {
			t.Errorf("NewSerializer(%q) returned error: %v", name, err)
			continue
		}
		if s.GetName() != name {
			t.Errorf("NewSerializer(%q) returned serializer named %q", name, s.GetName())
		}
	}

	if _, err := NewSerializer("binary"); err == nil {
		t.Error("Expected error for unknown serializer")
	}
}
