package sidecar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"forgery/internal/diagnostic"
)

// object is a JSON object that keeps its key order. Values stay raw until
// a caller decodes them, so untouched keys are written back as they came.
type object = orderedmap.OrderedMap[string, json.RawMessage]

func newObject() *object {
	return orderedmap.New[string, json.RawMessage]()
}

// decodeObject parses a JSON document whose root is an object. Syntax
// errors become a ParseError naming source.
func decodeObject(source string, data []byte) (*object, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, jsonError(source, data, 0, err)
	}

	if _, ok := doc.(map[string]any); !ok {
		return nil, jsonError(source, data, 0, errors.New("document is not an object"))
	}

	o := newObject()
	if err := json.Unmarshal(data, o); err != nil {
		return nil, jsonError(source, data, 0, err)
	}

	return o, nil
}

// subObject decodes raw, the value of key in source, as an object.
func subObject(source, key string, raw json.RawMessage) (*object, error) {
	if !isObject(raw) {
		return nil, &diagnostic.ParseError{Source: source, Line: 1, Text: key, Err: fmt.Errorf("%s is not an object", key)}
	}

	o := newObject()
	if err := json.Unmarshal(raw, o); err != nil {
		return nil, &diagnostic.ParseError{Source: source, Line: 1, Text: key, Err: err}
	}

	return o, nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// encodeObject writes the pairs of m in order as compact JSON. It does not
// use OrderedMap.MarshalJSON because that escapes HTML characters, which
// would turn "<init>" in method references into "\u003cinit\u003e".
func encodeObject[V any](m *orderedmap.OrderedMap[string, V]) (json.RawMessage, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}

		if err := writeJSON(&buf, pair.Key); err != nil {
			return nil, err
		}

		buf.WriteByte(':')

		if err := writeJSON(&buf, pair.Value); err != nil {
			return nil, fmt.Errorf("%s: %w", pair.Key, err)
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// writeJSON encodes v without HTML escaping, so "<init>" stays readable.
func writeJSON(w *bytes.Buffer, v any) error {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return err
	}

	w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))

	return nil
}

// encodeIndented writes o tab indented.
func encodeIndented(o *object) ([]byte, error) {
	compact, err := encodeObject(o)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "\t"); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// jsonError locates offset in data and wraps err as a ParseError.
func jsonError(source string, data []byte, offset int64, err error) error {
	var syntax *json.SyntaxError
	if errors.As(err, &syntax) {
		offset = syntax.Offset
	}

	if offset > int64(len(data)) {
		offset = int64(len(data))
	}

	before := string(data[:offset])
	line := strings.Count(before, "\n") + 1

	start := strings.LastIndexByte(before, '\n') + 1
	end := len(data)

	if i := bytes.IndexByte(data[start:], '\n'); i >= 0 {
		end = start + i
	}

	return &diagnostic.ParseError{Source: source, Line: line, Text: string(data[start:end]), Err: err}
}
