package sidecar

import (
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"forgery/internal/diagnostic"
	"forgery/internal/jvmtype"
	"forgery/internal/resolve"
)

// DefaultNamespace keys the copy of the rewritten mappings under "data".
const DefaultNamespace = "named:srg"

// Refmap rewrites mixin reference maps.
type Refmap struct {
	remapper  *resolve.Remapper
	namespace string
	sink      *diagnostic.Sink
}

// NewRefmap creates a reference map rewriter. An empty namespace selects
// DefaultNamespace.
func NewRefmap(remapper *resolve.Remapper, namespace string, sink *diagnostic.Sink) *Refmap {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &Refmap{remapper: remapper, namespace: namespace, sink: sink}
}

// Rewrite remaps every symbol of the reference map stored in entry. The
// result replaces "mappings" and is copied to data[namespace]; other
// keys are kept in order.
func (r *Refmap) Rewrite(entry string, data []byte) ([]byte, error) {
	root, err := decodeObject(entry, data)
	if err != nil {
		return nil, err
	}

	mappings := newObject()

	if raw, ok := root.Get("mappings"); ok {
		src, err := subObject(entry, "mappings", raw)
		if err != nil {
			return nil, err
		}

		if mappings, err = r.rewriteMappings(entry, src); err != nil {
			return nil, err
		}
	}

	encoded, err := encodeObject(mappings)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", entry, err)
	}

	root.Set("mappings", encoded)

	nsData := newObject()

	if raw, ok := root.Get("data"); ok && isObject(raw) {
		if nsData, err = subObject(entry, "data", raw); err != nil {
			return nil, err
		}
	}

	nsData.Set(r.namespace, encoded)

	encodedData, err := encodeObject(nsData)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", entry, err)
	}

	root.Set("data", encodedData)

	out, err := encodeIndented(root)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", entry, err)
	}

	return out, nil
}

func (r *Refmap) rewriteMappings(entry string, src *object) (*object, error) {
	out := newObject()

	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		id := pair.Key

		targets, err := subObject(entry, id, pair.Value)
		if err != nil {
			return nil, err
		}

		nw := orderedmap.New[string, string]()

		for target := targets.Oldest(); target != nil; target = target.Next() {
			var symbol string
			if err := json.Unmarshal(target.Value, &symbol); err != nil {
				return nil, &diagnostic.ParseError{Source: entry, Line: 1, Text: target.Key, Err: fmt.Errorf("symbol of %s is not a string", target.Key)}
			}

			remapped := r.Symbol(symbol)
			if resolve.HasLeftoverToken(remapped) {
				r.sink.Warn(diagnostic.CodeLeftoverSymbol,
					fmt.Sprintf("%s became %s, which still contains intermediate names", symbol, remapped), entry, symbol)
			}

			nw.Set(target.Key, remapped)
		}

		encoded, err := encodeObject(nw)
		if err != nil {
			return nil, err
		}

		out.Set(id, encoded)
	}

	return out, nil
}

// Symbol remaps one reference: a class name, [Lowner;]name:type or
// [Lowner;]name(desc). Constructors keep their name.
func (r *Refmap) Symbol(symbol string) string {
	if jvmtype.IsSpecialMethod(symbol) {
		return symbol
	}

	var owner string

	rest := symbol
	if strings.HasPrefix(symbol, "L") {
		if semi := strings.IndexByte(symbol, ';'); semi > 0 {
			owner, rest = symbol[1:semi], symbol[semi+1:]
		}
	}

	rm := r.remapper

	var out string

	switch paren, colon := strings.IndexByte(rest, '('), strings.IndexByte(rest, ':'); {
	case paren >= 0:
		name, desc := rest[:paren], rest[paren:]
		if !jvmtype.IsSpecialMethod(name) {
			name = rm.Method(owner, name, desc)
		}

		out = name + rm.MethodDescriptor(desc)
	case colon >= 0:
		name, typ := rest[:colon], rest[colon+1:]
		out = rm.Field(owner, name, typ) + ":" + rm.Descriptor(typ)
	case owner == "":
		return rm.Class(symbol)
	default:
		out = rm.Field(owner, rest, "")
	}

	if owner != "" {
		out = "L" + rm.Class(owner) + ";" + out
	}

	return out
}
