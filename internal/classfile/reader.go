package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Decoding and encoding errors.
var (
	ErrBadMagic  = errors.New("classfile: not a class file")
	ErrTruncated = errors.New("classfile: truncated")
	ErrMalformed = errors.New("classfile: malformed")
	// ErrOpaque is returned by Encode for a class carrying an attribute
	// whose layout is unknown.
	ErrOpaque = errors.New("classfile: attribute of unknown layout")
	// ErrLdcRange is returned by Encode when an ldc constant does not fit
	// a one-byte index.
	ErrLdcRange = errors.New("classfile: ldc constant index out of range")
)

const magic = 0xCAFEBABE

type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) need(n int) error {
	if c.pos+n > len(c.data) {
		return fmt.Errorf("%w at offset %d", ErrTruncated, c.pos)
	}

	return nil
}

func (c *cursor) u1() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}

	v := c.data[c.pos]
	c.pos++

	return v, nil
}

func (c *cursor) u2() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}

	v := binary.BigEndian.Uint16(c.data[c.pos:])
	c.pos += 2

	return v, nil
}

func (c *cursor) u4() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}

	v := binary.BigEndian.Uint32(c.data[c.pos:])
	c.pos += 4

	return v, nil
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}

	v := c.data[c.pos : c.pos+n]
	c.pos += n

	return v, nil
}

// rawEntry is a pool entry with its index operands unresolved.
type rawEntry struct {
	tag  Tag
	a, b uint16
	bits uint64
	text string
}

// pool resolves indices of the file being decoded.
type pool struct {
	raw      []rawEntry
	resolved []*Constant
}

func readPool(c *cursor) (*pool, error) {
	count, err := c.u2()
	if err != nil {
		return nil, err
	}

	p := &pool{raw: make([]rawEntry, count), resolved: make([]*Constant, count)}

	for i := 1; i < int(count); i++ {
		tag, err := c.u1()
		if err != nil {
			return nil, err
		}

		e := rawEntry{tag: Tag(tag)}

		switch e.tag {
		case TagUtf8:
			n, err := c.u2()
			if err != nil {
				return nil, err
			}

			b, err := c.bytes(int(n))
			if err != nil {
				return nil, err
			}

			e.text = string(b)
		case TagInteger, TagFloat:
			v, err := c.u4()
			if err != nil {
				return nil, err
			}

			e.bits = uint64(v)
		case TagLong, TagDouble:
			hi, err := c.u4()
			if err != nil {
				return nil, err
			}

			lo, err := c.u4()
			if err != nil {
				return nil, err
			}

			e.bits = uint64(hi)<<32 | uint64(lo)
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			if e.a, err = c.u2(); err != nil {
				return nil, err
			}
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType, TagDynamic, TagInvokeDynamic:
			if e.a, err = c.u2(); err != nil {
				return nil, err
			}

			if e.b, err = c.u2(); err != nil {
				return nil, err
			}
		case TagMethodHandle:
			kind, err := c.u1()
			if err != nil {
				return nil, err
			}

			e.a = uint16(kind)
			if e.b, err = c.u2(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: constant tag %d at index %d", ErrMalformed, tag, i)
		}

		p.raw[i] = e

		if e.tag == TagLong || e.tag == TagDouble {
			i++
		}
	}

	return p, nil
}

// get resolves the constant at idx.
func (p *pool) get(idx uint16) (Constant, error) {
	return p.resolve(idx, 0)
}

// maxDepth bounds chains such as MethodHandle -> Methodref -> NameAndType.
const maxDepth = 4

func (p *pool) resolve(idx uint16, depth int) (Constant, error) {
	if idx == 0 || int(idx) >= len(p.raw) || p.raw[idx].tag == 0 {
		return Constant{}, fmt.Errorf("%w: constant index %d", ErrMalformed, idx)
	}

	if c := p.resolved[idx]; c != nil {
		return *c, nil
	}

	if depth > maxDepth {
		return Constant{}, fmt.Errorf("%w: constant %d nests too deep", ErrMalformed, idx)
	}

	e := p.raw[idx]
	c := Constant{Tag: e.tag}

	switch e.tag {
	case TagUtf8:
		c.Text = e.text
	case TagInteger, TagFloat, TagLong, TagDouble:
		c.Bits = e.bits
	case TagClass, TagString, TagMethodType, TagModule, TagPackage:
		s, err := p.utf8(e.a)
		if err != nil {
			return Constant{}, err
		}

		c.Text = s
	case TagNameAndType:
		name, err := p.utf8(e.a)
		if err != nil {
			return Constant{}, err
		}

		desc, err := p.utf8(e.b)
		if err != nil {
			return Constant{}, err
		}

		c.Name, c.Desc = name, desc
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		owner, err := p.resolve(e.a, depth+1)
		if err != nil {
			return Constant{}, err
		}

		nat, err := p.resolve(e.b, depth+1)
		if err != nil {
			return Constant{}, err
		}

		if owner.Tag != TagClass || nat.Tag != TagNameAndType {
			return Constant{}, fmt.Errorf("%w: member reference %d", ErrMalformed, idx)
		}

		c.Owner, c.Name, c.Desc = owner.Text, nat.Name, nat.Desc
	case TagDynamic, TagInvokeDynamic:
		nat, err := p.resolve(e.b, depth+1)
		if err != nil {
			return Constant{}, err
		}

		if nat.Tag != TagNameAndType {
			return Constant{}, fmt.Errorf("%w: dynamic constant %d", ErrMalformed, idx)
		}

		c.Bootstrap, c.Name, c.Desc = e.a, nat.Name, nat.Desc
	case TagMethodHandle:
		ref, err := p.resolve(e.b, depth+1)
		if err != nil {
			return Constant{}, err
		}

		if !ref.IsMemberRef() {
			return Constant{}, fmt.Errorf("%w: method handle %d", ErrMalformed, idx)
		}

		c.RefKind, c.RefTag = uint8(e.a), ref.Tag
		c.Owner, c.Name, c.Desc = ref.Owner, ref.Name, ref.Desc
	}

	p.resolved[idx] = &c

	return c, nil
}

func (p *pool) utf8(idx uint16) (string, error) {
	c, err := p.get(idx)
	if err != nil {
		return "", err
	}

	if c.Tag != TagUtf8 {
		return "", fmt.Errorf("%w: index %d is not Utf8", ErrMalformed, idx)
	}

	return c.Text, nil
}

// optClass resolves a class index that may be zero.
func (p *pool) optClass(idx uint16) (string, error) {
	if idx == 0 {
		return "", nil
	}

	c, err := p.get(idx)
	if err != nil {
		return "", err
	}

	if c.Tag != TagClass {
		return "", fmt.Errorf("%w: index %d is not a class", ErrMalformed, idx)
	}

	return c.Text, nil
}

func (p *pool) optUtf8(idx uint16) (string, error) {
	if idx == 0 {
		return "", nil
	}

	return p.utf8(idx)
}

// Parse decodes a class file.
func Parse(data []byte) (*Class, error) {
	return parse(data, true)
}

// ParseHeader decodes names, supertypes and member signatures only;
// attributes are skipped.
func ParseHeader(data []byte) (*Class, error) {
	return parse(data, false)
}

func parse(data []byte, full bool) (*Class, error) {
	c := &cursor{data: data}

	m, err := c.u4()
	if err != nil {
		return nil, err
	}

	if m != magic {
		return nil, ErrBadMagic
	}

	cls := &Class{}
	if cls.Minor, err = c.u2(); err != nil {
		return nil, err
	}

	if cls.Major, err = c.u2(); err != nil {
		return nil, err
	}

	p, err := readPool(c)
	if err != nil {
		return nil, err
	}

	d := &decoder{c: c, pool: p, full: full}

	if cls.Access, err = c.u2(); err != nil {
		return nil, err
	}

	if cls.Name, err = d.class(); err != nil {
		return nil, err
	}

	if cls.Super, err = d.class(); err != nil {
		return nil, err
	}

	n, err := c.u2()
	if err != nil {
		return nil, err
	}

	for range n {
		iface, err := d.class()
		if err != nil {
			return nil, err
		}

		cls.Interfaces = append(cls.Interfaces, iface)
	}

	if cls.Fields, err = d.members(); err != nil {
		return nil, err
	}

	if cls.Methods, err = d.members(); err != nil {
		return nil, err
	}

	if cls.Attributes, err = d.attributes(); err != nil {
		return nil, err
	}

	return cls, nil
}

type decoder struct {
	c    *cursor
	pool *pool
	full bool
}

func (d *decoder) class() (string, error) {
	idx, err := d.c.u2()
	if err != nil {
		return "", err
	}

	return d.pool.optClass(idx)
}

func (d *decoder) utf8() (string, error) {
	idx, err := d.c.u2()
	if err != nil {
		return "", err
	}

	return d.pool.utf8(idx)
}

func (d *decoder) members() ([]*Member, error) {
	n, err := d.c.u2()
	if err != nil {
		return nil, err
	}

	out := make([]*Member, 0, n)

	for range n {
		m := &Member{}
		if m.Access, err = d.c.u2(); err != nil {
			return nil, err
		}

		if m.Name, err = d.utf8(); err != nil {
			return nil, err
		}

		if m.Desc, err = d.utf8(); err != nil {
			return nil, err
		}

		if m.Attributes, err = d.attributes(); err != nil {
			return nil, err
		}

		out = append(out, m)
	}

	return out, nil
}

func (d *decoder) attributes() ([]Attribute, error) {
	n, err := d.c.u2()
	if err != nil {
		return nil, err
	}

	var out []Attribute

	for range n {
		name, err := d.utf8()
		if err != nil {
			return nil, err
		}

		size, err := d.c.u4()
		if err != nil {
			return nil, err
		}

		body, err := d.c.bytes(int(size))
		if err != nil {
			return nil, err
		}

		if !d.full {
			continue
		}

		a, err := decodeAttribute(name, body, d.pool)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}

		out = append(out, a)
	}

	return out, nil
}
