package classfile

import (
	"fmt"
)

// Annotation is a decoded annotation. Type is a field descriptor.
type Annotation struct {
	Type     string
	Elements []ElementPair
}

// ElementPair is a named annotation element.
type ElementPair struct {
	Name  string
	Value ElementValue
}

// ElementValue is an annotation element value. Tag selects the used
// fields:
//
//	B C D F I J S Z s: Const
//	e: EnumType, EnumName
//	c: Class (a return descriptor)
//	@: Annotation
//	[: Array
type ElementValue struct {
	Tag        byte
	Const      Constant
	EnumType   string
	EnumName   string
	Class      string
	Annotation *Annotation
	Array      []ElementValue
}

// StringValue returns an 's' element value.
func StringValue(s string) ElementValue {
	return ElementValue{Tag: 's', Const: Utf8(s)}
}

// ClassValue returns a 'c' element value for a descriptor.
func ClassValue(desc string) ElementValue {
	return ElementValue{Tag: 'c', Class: desc}
}

// Element returns the value of element name.
func (a *Annotation) Element(name string) (ElementValue, bool) {
	for _, e := range a.Elements {
		if e.Name == name {
			return e.Value, true
		}
	}

	return ElementValue{}, false
}

// maxNesting bounds nested annotation values.
const maxNesting = 64

func (d *decoder) annotationList() ([]*Annotation, error) {
	n, err := d.c.u2()
	if err != nil {
		return nil, err
	}

	out := make([]*Annotation, 0, n)

	for range n {
		a, err := d.annotation(0)
		if err != nil {
			return nil, err
		}

		out = append(out, a)
	}

	return out, nil
}

func (d *decoder) annotation(depth int) (*Annotation, error) {
	typ, err := d.utf8()
	if err != nil {
		return nil, err
	}

	n, err := d.c.u2()
	if err != nil {
		return nil, err
	}

	a := &Annotation{Type: typ}

	for range n {
		name, err := d.utf8()
		if err != nil {
			return nil, err
		}

		v, err := d.elementValue(depth + 1)
		if err != nil {
			return nil, err
		}

		a.Elements = append(a.Elements, ElementPair{Name: name, Value: v})
	}

	return a, nil
}

func (d *decoder) elementValue(depth int) (ElementValue, error) {
	if depth > maxNesting {
		return ElementValue{}, fmt.Errorf("%w: annotation nesting", ErrMalformed)
	}

	tag, err := d.c.u1()
	if err != nil {
		return ElementValue{}, err
	}

	v := ElementValue{Tag: tag}

	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		idx, err := d.c.u2()
		if err != nil {
			return v, err
		}

		if v.Const, err = d.pool.get(idx); err != nil {
			return v, err
		}
	case 'e':
		if v.EnumType, err = d.utf8(); err != nil {
			return v, err
		}

		if v.EnumName, err = d.utf8(); err != nil {
			return v, err
		}
	case 'c':
		if v.Class, err = d.utf8(); err != nil {
			return v, err
		}
	case '@':
		if v.Annotation, err = d.annotation(depth); err != nil {
			return v, err
		}
	case '[':
		n, err := d.c.u2()
		if err != nil {
			return v, err
		}

		for range n {
			e, err := d.elementValue(depth + 1)
			if err != nil {
				return v, err
			}

			v.Array = append(v.Array, e)
		}
	default:
		return v, fmt.Errorf("%w: element value tag %q", ErrMalformed, tag)
	}

	return v, nil
}

func (d *decoder) parameterAnnotations(visible bool) (*ParameterAnnotationsAttribute, error) {
	n, err := d.c.u1()
	if err != nil {
		return nil, err
	}

	a := &ParameterAnnotationsAttribute{Visible: visible}

	for range n {
		anns, err := d.annotationList()
		if err != nil {
			return nil, err
		}

		a.Parameters = append(a.Parameters, anns)
	}

	return a, nil
}

// targetInfoSize is the size of target_info by target_type, excluding
// the localvar table whose size is variable.
func targetInfoSize(tt uint8) (int, bool) {
	switch tt {
	case 0x00, 0x01, 0x16:
		return 1, true
	case 0x10, 0x11, 0x12, 0x17, 0x42, 0x43, 0x44, 0x45, 0x46:
		return 2, true
	case 0x13, 0x14, 0x15:
		return 0, true
	case 0x47, 0x48, 0x49, 0x4a, 0x4b:
		return 3, true
	default:
		return 0, false
	}
}

func (d *decoder) typeAnnotations(visible bool) (*TypeAnnotationsAttribute, error) {
	n, err := d.c.u2()
	if err != nil {
		return nil, err
	}

	a := &TypeAnnotationsAttribute{Visible: visible}

	for range n {
		start := d.c.pos

		tt, err := d.c.u1()
		if err != nil {
			return nil, err
		}

		if tt == 0x40 || tt == 0x41 {
			entries, err := d.c.u2()
			if err != nil {
				return nil, err
			}

			if _, err := d.c.bytes(int(entries) * 6); err != nil {
				return nil, err
			}
		} else {
			size, ok := targetInfoSize(tt)
			if !ok {
				return nil, fmt.Errorf("%w: type annotation target 0x%02x", ErrMalformed, tt)
			}

			if _, err := d.c.bytes(size); err != nil {
				return nil, err
			}
		}

		pathLen, err := d.c.u1()
		if err != nil {
			return nil, err
		}

		if _, err := d.c.bytes(int(pathLen) * 2); err != nil {
			return nil, err
		}

		target := append([]byte(nil), d.c.data[start:d.c.pos]...)

		ann, err := d.annotation(0)
		if err != nil {
			return nil, err
		}

		a.Annotations = append(a.Annotations, &TypeAnnotation{Target: target, Annotation: ann})
	}

	return a, nil
}
