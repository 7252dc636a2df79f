package classfile

import (
	"encoding/binary"
	"fmt"
)

// maxPool is the largest constant_pool_count.
const maxPool = 0xFFFF

type poolBuilder struct {
	// slots[i] holds the encoded entry at index i; nil for index 0 and
	// the second slot of long and double entries.
	slots [][]byte
	index map[Constant]uint16
}

func newPoolBuilder() *poolBuilder {
	return &poolBuilder{slots: [][]byte{nil}, index: make(map[Constant]uint16)}
}

// add returns the index of c, appending it and then its children when
// it is new.
func (p *poolBuilder) add(c Constant) (uint16, error) {
	idx, fresh, err := p.reserve(c)
	if err != nil || !fresh {
		return idx, err
	}

	return idx, p.fill(idx, c)
}

// reserve assigns an index to c without encoding it.
func (p *poolBuilder) reserve(c Constant) (uint16, bool, error) {
	if i, ok := p.index[c]; ok {
		return i, false, nil
	}

	idx := len(p.slots)
	if idx+c.slots() > maxPool {
		return 0, false, fmt.Errorf("%w: constant pool overflow", ErrMalformed)
	}

	p.index[c] = uint16(idx)

	p.slots = append(p.slots, nil)
	if c.slots() == 2 {
		p.slots = append(p.slots, nil)
	}

	return uint16(idx), true, nil
}

func (p *poolBuilder) fill(idx uint16, c Constant) error {
	b, err := p.encode(c)
	if err != nil {
		return err
	}

	p.slots[idx] = b

	return nil
}

func (p *poolBuilder) encode(c Constant) ([]byte, error) {
	b := []byte{byte(c.Tag)}

	child := func(cc Constant) error {
		i, err := p.add(cc)
		if err != nil {
			return err
		}

		b = binary.BigEndian.AppendUint16(b, i)

		return nil
	}

	var err error

	switch c.Tag {
	case TagUtf8:
		if len(c.Text) > 0xFFFF {
			return nil, fmt.Errorf("%w: string constant too long", ErrMalformed)
		}

		b = binary.BigEndian.AppendUint16(b, uint16(len(c.Text)))
		b = append(b, c.Text...)
	case TagInteger, TagFloat:
		b = binary.BigEndian.AppendUint32(b, uint32(c.Bits))
	case TagLong, TagDouble:
		b = binary.BigEndian.AppendUint64(b, c.Bits)
	case TagClass, TagString, TagMethodType, TagModule, TagPackage:
		err = child(Utf8(c.Text))
	case TagNameAndType:
		if err = child(Utf8(c.Name)); err == nil {
			err = child(Utf8(c.Desc))
		}
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		if err = child(ClassConst(c.Owner)); err == nil {
			err = child(Constant{Tag: TagNameAndType, Name: c.Name, Desc: c.Desc})
		}
	case TagMethodHandle:
		b = append(b, c.RefKind)
		err = child(Constant{Tag: c.RefTag, Owner: c.Owner, Name: c.Name, Desc: c.Desc})
	case TagDynamic, TagInvokeDynamic:
		b = binary.BigEndian.AppendUint16(b, c.Bootstrap)
		err = child(Constant{Tag: TagNameAndType, Name: c.Name, Desc: c.Desc})
	default:
		return nil, fmt.Errorf("%w: constant tag %d", ErrMalformed, c.Tag)
	}

	if err != nil {
		return nil, err
	}

	return b, nil
}

type encoder struct {
	pool *poolBuilder
}

// Encode serializes cls with a freshly built constant pool.
func Encode(cls *Class) ([]byte, error) {
	if name, ok := opaqueAttribute(cls); ok {
		return nil, fmt.Errorf("%w: %s", ErrOpaque, name)
	}

	e := &encoder{pool: newPoolBuilder()}

	// one-byte ldc operands take the lowest indices, their children come
	// after all of them
	var pending []Constant

	for _, m := range cls.Methods {
		code := m.Code()
		if code == nil {
			continue
		}

		for _, in := range code.Insns {
			if in.Width != 1 {
				continue
			}

			_, fresh, err := e.pool.reserve(in.Const)
			if err != nil {
				return nil, err
			}

			if fresh {
				pending = append(pending, in.Const)
			}
		}
	}

	for _, c := range pending {
		if err := e.pool.fill(e.pool.index[c], c); err != nil {
			return nil, err
		}
	}

	body, err := e.body(cls)
	if err != nil {
		return nil, err
	}

	out := binary.BigEndian.AppendUint32(nil, magic)
	out = binary.BigEndian.AppendUint16(out, cls.Minor)
	out = binary.BigEndian.AppendUint16(out, cls.Major)
	out = binary.BigEndian.AppendUint16(out, uint16(len(e.pool.slots)))

	for _, s := range e.pool.slots {
		out = append(out, s...)
	}

	return append(out, body...), nil
}

func (e *encoder) u2(b []byte, c Constant) ([]byte, error) {
	i, err := e.pool.add(c)
	if err != nil {
		return nil, err
	}

	return binary.BigEndian.AppendUint16(b, i), nil
}

// optClass writes a class index, or zero for an empty name.
func (e *encoder) optClass(b []byte, name string) ([]byte, error) {
	if name == "" {
		return binary.BigEndian.AppendUint16(b, 0), nil
	}

	return e.u2(b, ClassConst(name))
}

func (e *encoder) optUtf8(b []byte, s string) ([]byte, error) {
	if s == "" {
		return binary.BigEndian.AppendUint16(b, 0), nil
	}

	return e.u2(b, Utf8(s))
}

func (e *encoder) body(cls *Class) ([]byte, error) {
	b := binary.BigEndian.AppendUint16(nil, cls.Access)

	b, err := e.u2(b, ClassConst(cls.Name))
	if err != nil {
		return nil, err
	}

	if b, err = e.optClass(b, cls.Super); err != nil {
		return nil, err
	}

	b = binary.BigEndian.AppendUint16(b, uint16(len(cls.Interfaces)))
	for _, iface := range cls.Interfaces {
		if b, err = e.u2(b, ClassConst(iface)); err != nil {
			return nil, err
		}
	}

	for _, members := range [][]*Member{cls.Fields, cls.Methods} {
		b = binary.BigEndian.AppendUint16(b, uint16(len(members)))

		for _, m := range members {
			b = binary.BigEndian.AppendUint16(b, m.Access)
			if b, err = e.u2(b, Utf8(m.Name)); err != nil {
				return nil, err
			}

			if b, err = e.u2(b, Utf8(m.Desc)); err != nil {
				return nil, err
			}

			if b, err = e.attributes(b, m.Attributes); err != nil {
				return nil, err
			}
		}
	}

	return e.attributes(b, cls.Attributes)
}

func (e *encoder) attributes(b []byte, attrs []Attribute) ([]byte, error) {
	b = binary.BigEndian.AppendUint16(b, uint16(len(attrs)))

	for _, a := range attrs {
		var err error
		if b, err = e.u2(b, Utf8(a.AttrName())); err != nil {
			return nil, err
		}

		data, err := e.attribute(a)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", a.AttrName(), err)
		}

		b = binary.BigEndian.AppendUint32(b, uint32(len(data)))
		b = append(b, data...)
	}

	return b, nil
}

func (e *encoder) attribute(a Attribute) ([]byte, error) {
	switch a := a.(type) {
	case *RawAttribute:
		data := append([]byte(nil), a.Data...)

		for _, r := range a.Refs {
			i, err := e.pool.add(r.Const)
			if err != nil {
				return nil, err
			}

			binary.BigEndian.PutUint16(data[r.Offset:], i)
		}

		return data, nil
	case *CodeAttribute:
		return e.code(a)
	case *AnnotationsAttribute:
		return e.annotationList(nil, a.Annotations)
	case *ParameterAnnotationsAttribute:
		b := []byte{uint8(len(a.Parameters))}

		for _, anns := range a.Parameters {
			var err error
			if b, err = e.annotationList(b, anns); err != nil {
				return nil, err
			}
		}

		return b, nil
	case *TypeAnnotationsAttribute:
		b := binary.BigEndian.AppendUint16(nil, uint16(len(a.Annotations)))

		for _, ta := range a.Annotations {
			b = append(b, ta.Target...)

			var err error
			if b, err = e.annotation(b, ta.Annotation); err != nil {
				return nil, err
			}
		}

		return b, nil
	case *AnnotationDefaultAttribute:
		return e.elementValue(nil, a.Value)
	case *InnerClassesAttribute:
		return e.innerClasses(a)
	case *EnclosingMethodAttribute:
		b, err := e.optClass(nil, a.Class)
		if err != nil {
			return nil, err
		}

		if a.MethodName == "" {
			return binary.BigEndian.AppendUint16(b, 0), nil
		}

		return e.u2(b, Constant{Tag: TagNameAndType, Name: a.MethodName, Desc: a.MethodDesc})
	case *RecordAttribute:
		return e.record(a)
	case *BootstrapMethodsAttribute:
		return e.bootstrapMethods(a)
	default:
		return nil, fmt.Errorf("%w: attribute type %T", ErrMalformed, a)
	}
}

func (e *encoder) code(a *CodeAttribute) ([]byte, error) {
	code := append([]byte(nil), a.Code...)

	for _, in := range a.Insns {
		i, err := e.pool.add(in.Const)
		if err != nil {
			return nil, err
		}

		if in.Width == 1 {
			if i > 0xFF {
				return nil, fmt.Errorf("%w: %s at %d", ErrLdcRange, in.Const, in.Offset)
			}

			code[in.Offset+1] = byte(i)
		} else {
			binary.BigEndian.PutUint16(code[in.Offset+1:], i)
		}
	}

	b := binary.BigEndian.AppendUint16(nil, a.MaxStack)
	b = binary.BigEndian.AppendUint16(b, a.MaxLocals)
	b = binary.BigEndian.AppendUint32(b, uint32(len(code)))
	b = append(b, code...)
	b = binary.BigEndian.AppendUint16(b, uint16(len(a.Handlers)))

	for _, h := range a.Handlers {
		b = binary.BigEndian.AppendUint16(b, h.Start)
		b = binary.BigEndian.AppendUint16(b, h.End)
		b = binary.BigEndian.AppendUint16(b, h.Handler)

		var err error
		if b, err = e.optClass(b, h.CatchType); err != nil {
			return nil, err
		}
	}

	return e.attributes(b, a.Attributes)
}

func (e *encoder) innerClasses(a *InnerClassesAttribute) ([]byte, error) {
	b := binary.BigEndian.AppendUint16(nil, uint16(len(a.Classes)))

	for _, ic := range a.Classes {
		var err error
		if b, err = e.optClass(b, ic.Inner); err != nil {
			return nil, err
		}

		if b, err = e.optClass(b, ic.Outer); err != nil {
			return nil, err
		}

		if b, err = e.optUtf8(b, ic.Name); err != nil {
			return nil, err
		}

		b = binary.BigEndian.AppendUint16(b, ic.Access)
	}

	return b, nil
}

func (e *encoder) record(a *RecordAttribute) ([]byte, error) {
	b := binary.BigEndian.AppendUint16(nil, uint16(len(a.Components)))

	for _, rc := range a.Components {
		var err error
		if b, err = e.u2(b, Utf8(rc.Name)); err != nil {
			return nil, err
		}

		if b, err = e.u2(b, Utf8(rc.Desc)); err != nil {
			return nil, err
		}

		if b, err = e.attributes(b, rc.Attributes); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func (e *encoder) bootstrapMethods(a *BootstrapMethodsAttribute) ([]byte, error) {
	b := binary.BigEndian.AppendUint16(nil, uint16(len(a.Methods)))

	for _, bm := range a.Methods {
		var err error
		if b, err = e.u2(b, bm.Method); err != nil {
			return nil, err
		}

		b = binary.BigEndian.AppendUint16(b, uint16(len(bm.Args)))
		for _, arg := range bm.Args {
			if b, err = e.u2(b, arg); err != nil {
				return nil, err
			}
		}
	}

	return b, nil
}

func (e *encoder) annotationList(b []byte, anns []*Annotation) ([]byte, error) {
	b = binary.BigEndian.AppendUint16(b, uint16(len(anns)))

	for _, a := range anns {
		var err error
		if b, err = e.annotation(b, a); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func (e *encoder) annotation(b []byte, a *Annotation) ([]byte, error) {
	b, err := e.u2(b, Utf8(a.Type))
	if err != nil {
		return nil, err
	}

	b = binary.BigEndian.AppendUint16(b, uint16(len(a.Elements)))

	for _, el := range a.Elements {
		if b, err = e.u2(b, Utf8(el.Name)); err != nil {
			return nil, err
		}

		if b, err = e.elementValue(b, el.Value); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func (e *encoder) elementValue(b []byte, v ElementValue) ([]byte, error) {
	b = append(b, v.Tag)

	var err error

	switch v.Tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		b, err = e.u2(b, v.Const)
	case 'e':
		if b, err = e.u2(b, Utf8(v.EnumType)); err == nil {
			b, err = e.u2(b, Utf8(v.EnumName))
		}
	case 'c':
		b, err = e.u2(b, Utf8(v.Class))
	case '@':
		b, err = e.annotation(b, v.Annotation)
	case '[':
		b = binary.BigEndian.AppendUint16(b, uint16(len(v.Array)))
		for _, el := range v.Array {
			if b, err = e.elementValue(b, el); err != nil {
				break
			}
		}
	default:
		err = fmt.Errorf("%w: element value tag %q", ErrMalformed, v.Tag)
	}

	if err != nil {
		return nil, err
	}

	return b, nil
}

// opaqueAttribute finds an attribute of unknown layout anywhere in cls.
func opaqueAttribute(cls *Class) (string, bool) {
	var find func(attrs []Attribute) (string, bool)

	find = func(attrs []Attribute) (string, bool) {
		for _, a := range attrs {
			switch a := a.(type) {
			case *RawAttribute:
				if a.Opaque {
					return a.Name, true
				}
			case *CodeAttribute:
				if n, ok := find(a.Attributes); ok {
					return n, true
				}
			case *RecordAttribute:
				for _, rc := range a.Components {
					if n, ok := find(rc.Attributes); ok {
						return n, true
					}
				}
			}
		}

		return "", false
	}

	if n, ok := find(cls.Attributes); ok {
		return n, true
	}

	for _, members := range [][]*Member{cls.Fields, cls.Methods} {
		for _, m := range members {
			if n, ok := find(m.Attributes); ok {
				return n, true
			}
		}
	}

	return "", false
}
