package jvmtype

import (
	"fmt"
	"strings"
)

// RemapSignature rewrites the class names of a generic class, method or
// field signature. Malformed signatures are returned unchanged.
func RemapSignature(sig string, m ClassMapper) string {
	if sig == "" {
		return sig
	}

	r := &sigRemapper{src: sig, m: m}
	if err := r.signature(); err != nil {
		return sig
	}

	return r.out.String()
}

type sigRemapper struct {
	src string
	pos int
	out strings.Builder
	m   ClassMapper
}

func (r *sigRemapper) peek() byte {
	if r.pos >= len(r.src) {
		return 0
	}

	return r.src[r.pos]
}

func (r *sigRemapper) expect(c byte) error {
	if r.peek() != c {
		return fmt.Errorf("%w: expected %q at %d in signature %q", ErrMalformed, c, r.pos, r.src)
	}

	r.out.WriteByte(c)
	r.pos++

	return nil
}

// ident consumes characters up to (not including) any of stop.
func (r *sigRemapper) ident(stop string) (string, error) {
	start := r.pos
	for r.pos < len(r.src) && strings.IndexByte(stop, r.src[r.pos]) < 0 {
		r.pos++
	}

	if r.pos >= len(r.src) || r.pos == start {
		return "", fmt.Errorf("%w: bad identifier at %d in signature %q", ErrMalformed, start, r.src)
	}

	return r.src[start:r.pos], nil
}

func (r *sigRemapper) signature() error {
	if r.peek() == '<' {
		if err := r.typeParameters(); err != nil {
			return err
		}
	}

	if r.peek() == '(' {
		return r.methodRest()
	}

	for r.pos < len(r.src) {
		if err := r.referenceType(); err != nil {
			return err
		}
	}

	return nil
}

func (r *sigRemapper) methodRest() error {
	if err := r.expect('('); err != nil {
		return err
	}

	for r.peek() != ')' {
		if r.pos >= len(r.src) {
			return fmt.Errorf("%w: unterminated parameters in %q", ErrMalformed, r.src)
		}

		if err := r.javaType(); err != nil {
			return err
		}
	}

	_ = r.expect(')')

	if r.peek() == 'V' {
		_ = r.expect('V')
	} else if err := r.javaType(); err != nil {
		return err
	}

	for r.peek() == '^' {
		_ = r.expect('^')

		if err := r.referenceType(); err != nil {
			return err
		}
	}

	if r.pos != len(r.src) {
		return fmt.Errorf("%w: trailing data in %q", ErrMalformed, r.src)
	}

	return nil
}

func (r *sigRemapper) typeParameters() error {
	_ = r.expect('<')

	for r.peek() != '>' {
		name, err := r.ident(":>")
		if err != nil {
			return err
		}

		r.out.WriteString(name)

		if r.peek() != ':' {
			return fmt.Errorf("%w: type parameter %q without bound in %q", ErrMalformed, name, r.src)
		}

		for r.peek() == ':' {
			_ = r.expect(':')

			switch r.peek() {
			case 'L', 'T', '[':
				if err := r.referenceType(); err != nil {
					return err
				}
			}
		}
	}

	return r.expect('>')
}

func (r *sigRemapper) javaType() error {
	if IsPrimitive(r.peek()) {
		r.out.WriteByte(r.peek())
		r.pos++

		return nil
	}

	return r.referenceType()
}

func (r *sigRemapper) referenceType() error {
	switch r.peek() {
	case 'L':
		return r.classType()
	case 'T':
		_ = r.expect('T')

		name, err := r.ident(";")
		if err != nil {
			return err
		}

		r.out.WriteString(name)

		return r.expect(';')
	case '[':
		_ = r.expect('[')
		return r.javaType()
	default:
		return fmt.Errorf("%w: unexpected %q at %d in signature %q", ErrMalformed, r.peek(), r.pos, r.src)
	}
}

func (r *sigRemapper) classType() error {
	r.pos++ // 'L'

	name, err := r.ident("<.;")
	if err != nil {
		return err
	}

	mapped := r.m(name)
	r.out.WriteByte('L')
	r.out.WriteString(mapped)

	if r.peek() == '<' {
		if err := r.typeArguments(); err != nil {
			return err
		}
	}

	for r.peek() == '.' {
		r.pos++

		inner, err := r.ident("<.;")
		if err != nil {
			return err
		}

		name = name + "$" + inner
		innerMapped := r.m(name)
		r.out.WriteByte('.')
		r.out.WriteString(innerSimpleName(innerMapped, mapped, inner))
		mapped = innerMapped

		if r.peek() == '<' {
			if err := r.typeArguments(); err != nil {
				return err
			}
		}
	}

	return r.expect(';')
}

// innerSimpleName extracts the inner segment of a renamed nested class.
func innerSimpleName(innerMapped, outerMapped, fallback string) string {
	if strings.HasPrefix(innerMapped, outerMapped+"$") {
		return innerMapped[len(outerMapped)+1:]
	}

	if i := strings.LastIndexByte(innerMapped, '$'); i >= 0 {
		return innerMapped[i+1:]
	}

	return fallback
}

func (r *sigRemapper) typeArguments() error {
	_ = r.expect('<')

	for r.peek() != '>' {
		switch r.peek() {
		case 0:
			return fmt.Errorf("%w: unterminated type arguments in %q", ErrMalformed, r.src)
		case '*':
			_ = r.expect('*')
			continue
		case '+', '-':
			r.out.WriteByte(r.peek())
			r.pos++
		}

		if err := r.referenceType(); err != nil {
			return err
		}
	}

	return r.expect('>')
}

// ClassSignature is a generic class signature split into its parts. Each
// supertype is kept as its raw class type signature.
type ClassSignature struct {
	TypeParams string // "<...>" or empty
	Super      string
	Interfaces []string
}

// ParseClassSignature splits a class signature (JVMS 4.7.9.1).
func ParseClassSignature(sig string) (*ClassSignature, error) {
	r := &sigRemapper{src: sig, m: func(s string) string { return s }}

	if r.peek() == '<' {
		if err := r.typeParameters(); err != nil {
			return nil, err
		}
	}

	out := &ClassSignature{TypeParams: sig[:r.pos]}

	for r.pos < len(sig) {
		start := r.pos
		if r.peek() != 'L' {
			return nil, fmt.Errorf("%w: supertype at %d is not a class type in %q", ErrMalformed, start, sig)
		}

		if err := r.classType(); err != nil {
			return nil, err
		}

		if out.Super == "" {
			out.Super = sig[start:r.pos]
		} else {
			out.Interfaces = append(out.Interfaces, sig[start:r.pos])
		}
	}

	if out.Super == "" {
		return nil, fmt.Errorf("%w: class signature %q has no superclass", ErrMalformed, sig)
	}

	return out, nil
}

// String renders the signature.
func (s *ClassSignature) String() string {
	return s.TypeParams + s.Super + strings.Join(s.Interfaces, "")
}

// SignatureClass returns the internal name of the class a class type
// signature denotes, type arguments erased: "Lp/A<TT;>.B;" is "p/A$B".
func SignatureClass(t string) string {
	if !strings.HasPrefix(t, "L") {
		return ""
	}

	var sb strings.Builder

	depth := 0

	for i := 1; i < len(t); i++ {
		switch c := t[i]; {
		case c == '<':
			depth++
		case c == '>':
			depth--
		case depth > 0:
		case c == ';':
			return sb.String()
		case c == '.':
			sb.WriteByte('$')
		default:
			sb.WriteByte(c)
		}
	}

	return sb.String()
}
