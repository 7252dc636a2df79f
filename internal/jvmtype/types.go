package jvmtype

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned for descriptors that do not follow JVMS 4.3.
var ErrMalformed = errors.New("malformed descriptor")

// ClassMapper returns the renamed internal name for a class.
// Unknown classes must be returned unchanged.
type ClassMapper func(internalName string) string

// TypeKind represents the kind of a descriptor type.
type TypeKind int

const (
	KindUnknown   TypeKind = iota
	KindPrimitive          // B C D F I J S Z
	KindObject             // L...;
	KindArray              // [...
	KindVoid               // V, method return only
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindVoid:
		return "void"
	default:
		return "unknown"
	}
}

// Type is a parsed field type.
type Type struct {
	Kind      TypeKind
	Primitive byte   // for KindPrimitive
	Class     string // for KindObject, internal name
	ElemType  *Type  // for KindArray
}

// Dimensions returns the array dimension count, zero for non-arrays.
func (t *Type) Dimensions() int {
	n := 0
	for cur := t; cur != nil && cur.Kind == KindArray; cur = cur.ElemType {
		n++
	}

	return n
}

// String renders the type back to descriptor form.
func (t *Type) String() string {
	var sb strings.Builder
	t.write(&sb)

	return sb.String()
}

func (t *Type) write(sb *strings.Builder) {
	switch t.Kind {
	case KindPrimitive:
		sb.WriteByte(t.Primitive)
	case KindVoid:
		sb.WriteByte('V')
	case KindObject:
		sb.WriteByte('L')
		sb.WriteString(t.Class)
		sb.WriteByte(';')
	case KindArray:
		sb.WriteByte('[')
		t.ElemType.write(sb)
	}
}

// Remap returns a copy of t with every embedded class name passed through m.
func (t *Type) Remap(m ClassMapper) *Type {
	switch t.Kind {
	case KindObject:
		return &Type{Kind: KindObject, Class: m(t.Class)}
	case KindArray:
		return &Type{Kind: KindArray, ElemType: t.ElemType.Remap(m)}
	default:
		cp := *t
		return &cp
	}
}

// IsPrimitive reports whether c is a primitive descriptor character.
func IsPrimitive(c byte) bool {
	switch c {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return true
	}

	return false
}

// ParseType parses a complete field descriptor.
func ParseType(desc string) (*Type, error) {
	t, n, err := parseType(desc, 0, false)
	if err != nil {
		return nil, err
	}

	if n != len(desc) {
		return nil, fmt.Errorf("%w: trailing data in %q", ErrMalformed, desc)
	}

	return t, nil
}

func parseType(s string, pos int, allowVoid bool) (*Type, int, error) {
	if pos >= len(s) {
		return nil, pos, fmt.Errorf("%w: unexpected end of %q", ErrMalformed, s)
	}

	c := s[pos]

	switch {
	case IsPrimitive(c):
		return &Type{Kind: KindPrimitive, Primitive: c}, pos + 1, nil
	case c == 'V' && allowVoid:
		return &Type{Kind: KindVoid}, pos + 1, nil
	case c == 'L':
		end := strings.IndexByte(s[pos:], ';')
		if end < 2 {
			return nil, pos, fmt.Errorf("%w: unterminated class type in %q", ErrMalformed, s)
		}

		return &Type{Kind: KindObject, Class: s[pos+1 : pos+end]}, pos + end + 1, nil
	case c == '[':
		elem, n, err := parseType(s, pos+1, false)
		if err != nil {
			return nil, pos, err
		}

		return &Type{Kind: KindArray, ElemType: elem}, n, nil
	default:
		return nil, pos, fmt.Errorf("%w: unexpected %q in %q", ErrMalformed, c, s)
	}
}

// MethodDescriptor is a parsed method descriptor.
type MethodDescriptor struct {
	Params []*Type
	Return *Type
}

// ParseMethodDescriptor parses a "(params)return" descriptor.
func ParseMethodDescriptor(desc string) (*MethodDescriptor, error) {
	if !strings.HasPrefix(desc, "(") {
		return nil, fmt.Errorf("%w: method descriptor %q must start with '('", ErrMalformed, desc)
	}

	md := &MethodDescriptor{}
	pos := 1

	for pos < len(desc) && desc[pos] != ')' {
		t, n, err := parseType(desc, pos, false)
		if err != nil {
			return nil, err
		}

		md.Params = append(md.Params, t)
		pos = n
	}

	if pos >= len(desc) {
		return nil, fmt.Errorf("%w: unterminated parameter list in %q", ErrMalformed, desc)
	}

	ret, n, err := parseType(desc, pos+1, true)
	if err != nil {
		return nil, err
	}

	if n != len(desc) {
		return nil, fmt.Errorf("%w: trailing data in %q", ErrMalformed, desc)
	}

	md.Return = ret

	return md, nil
}

// String renders the descriptor.
func (md *MethodDescriptor) String() string {
	var sb strings.Builder

	sb.WriteByte('(')

	for _, p := range md.Params {
		p.write(&sb)
	}

	sb.WriteByte(')')
	md.Return.write(&sb)

	return sb.String()
}

// Remap returns a copy of md with every embedded class name passed through m.
func (md *MethodDescriptor) Remap(m ClassMapper) *MethodDescriptor {
	out := &MethodDescriptor{Params: make([]*Type, len(md.Params))}
	for i, p := range md.Params {
		out.Params[i] = p.Remap(m)
	}

	out.Return = md.Return.Remap(m)

	return out
}

// RemapDescriptor rewrites the class names of a field or method descriptor.
// Malformed input is returned as-is; the scan only touches "L...;" runs.
func RemapDescriptor(desc string, m ClassMapper) string {
	if strings.IndexByte(desc, 'L') < 0 {
		return desc
	}

	var sb strings.Builder

	sb.Grow(len(desc))

	for i := 0; i < len(desc); i++ {
		c := desc[i]
		if c != 'L' {
			sb.WriteByte(c)
			continue
		}

		end := strings.IndexByte(desc[i:], ';')
		if end < 0 {
			return desc
		}

		sb.WriteByte('L')
		sb.WriteString(m(desc[i+1 : i+end]))
		sb.WriteByte(';')

		i += end
	}

	return sb.String()
}

// RemapClassRef rewrites the operand of a CONSTANT_Class entry, which is
// either an internal name or, for array classes, a field descriptor.
func RemapClassRef(name string, m ClassMapper) string {
	if strings.HasPrefix(name, "[") {
		return RemapDescriptor(name, m)
	}

	return m(name)
}

// ReturnClass returns the internal class name of a method descriptor's
// return type, or "" when it does not return an object.
func ReturnClass(desc string) string {
	md, err := ParseMethodDescriptor(desc)
	if err != nil || md.Return.Kind != KindObject {
		return ""
	}

	return md.Return.Class
}
