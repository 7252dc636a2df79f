package classfile

import (
	"fmt"
)

// refFree lists attributes that hold no pool references.
var refFree = map[string]bool{
	"SourceDebugExtension": true,
	"LineNumberTable":      true,
	"Deprecated":           true,
	"Synthetic":            true,
}

func decodeAttribute(name string, body []byte, p *pool) (Attribute, error) {
	d := &decoder{c: &cursor{data: body}, pool: p, full: true}

	switch name {
	case AttrCode:
		return d.code()
	case AttrRuntimeVisible, AttrRuntimeInvisible:
		anns, err := d.annotationList()
		if err != nil {
			return nil, err
		}

		return &AnnotationsAttribute{Visible: name == AttrRuntimeVisible, Annotations: anns}, nil
	case AttrRuntimeVisibleParameter, AttrRuntimeInvisibleParameter:
		return d.parameterAnnotations(name == AttrRuntimeVisibleParameter)
	case AttrRuntimeVisibleType, AttrRuntimeInvisibleType:
		return d.typeAnnotations(name == AttrRuntimeVisibleType)
	case AttrAnnotationDefault:
		v, err := d.elementValue(0)
		if err != nil {
			return nil, err
		}

		return &AnnotationDefaultAttribute{Value: v}, nil
	case AttrInnerClasses:
		return d.innerClasses()
	case AttrEnclosingMethod:
		return d.enclosingMethod()
	case AttrRecord:
		return d.record()
	case AttrBootstrapMethods:
		return d.bootstrapMethods()
	}

	raw := &RawAttribute{Name: name, Data: body}

	refs, known, err := d.rawRefs(name)
	if err != nil {
		return nil, err
	}

	raw.Refs = refs
	raw.Opaque = !known

	return raw, nil
}

// rawRefs locates the pool references of a fixed-layout attribute.
func (d *decoder) rawRefs(name string) ([]Ref, bool, error) {
	if refFree[name] {
		return nil, true, nil
	}

	var refs []Ref

	ref := func(role Role) error {
		at := d.c.pos

		idx, err := d.c.u2()
		if err != nil {
			return err
		}

		if idx == 0 {
			return nil
		}

		c, err := d.pool.get(idx)
		if err != nil {
			return err
		}

		refs = append(refs, Ref{Offset: at, Const: c, Role: role})

		return nil
	}

	table := func(roles ...Role) error {
		n, err := d.c.u2()
		if err != nil {
			return err
		}

		for range n {
			for _, r := range roles {
				if err := ref(r); err != nil {
					return err
				}
			}
		}

		return nil
	}

	var err error

	switch name {
	case "ConstantValue", "SourceFile":
		err = ref(RoleNone)
	case AttrSignature:
		err = ref(RoleSignature)
	case "NestHost", "ModuleMainClass":
		err = ref(RoleClass)
	case "Exceptions", "NestMembers", "PermittedSubclasses":
		err = table(RoleClass)
	case "ModulePackages":
		err = table(RolePackage)
	case AttrLocalVariableTable, AttrLocalVariableTypeTable:
		role := RoleDescriptor
		if name == AttrLocalVariableTypeTable {
			role = RoleSignature
		}

		n, e := d.c.u2()
		if e != nil {
			return nil, false, e
		}

		for range n {
			// start_pc, length
			if _, e = d.c.bytes(4); e != nil {
				return nil, false, e
			}

			if e = ref(RoleNone); e != nil {
				return nil, false, e
			}

			if e = ref(role); e != nil {
				return nil, false, e
			}

			// index
			if _, e = d.c.bytes(2); e != nil {
				return nil, false, e
			}
		}
	case "MethodParameters":
		n, e := d.c.u1()
		if e != nil {
			return nil, false, e
		}

		for range n {
			if e = ref(RoleNone); e != nil {
				return nil, false, e
			}

			if _, e = d.c.bytes(2); e != nil {
				return nil, false, e
			}
		}
	case AttrStackMapTable:
		err = d.stackMapRefs(ref)
	default:
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return refs, true, nil
}

// stackMapRefs walks the frames of a StackMapTable and reports the class
// of every Object verification type.
func (d *decoder) stackMapRefs(ref func(Role) error) error {
	verification := func(n int) error {
		for range n {
			tag, err := d.c.u1()
			if err != nil {
				return err
			}

			switch tag {
			case 7: // Object
				if err := ref(RoleClass); err != nil {
					return err
				}
			case 8: // Uninitialized
				if _, err := d.c.bytes(2); err != nil {
					return err
				}
			case 0, 1, 2, 3, 4, 5, 6:
			default:
				return fmt.Errorf("%w: verification type %d", ErrMalformed, tag)
			}
		}

		return nil
	}

	frames, err := d.c.u2()
	if err != nil {
		return err
	}

	for range frames {
		ft, err := d.c.u1()
		if err != nil {
			return err
		}

		switch {
		case ft <= 63:
		case ft <= 127:
			err = verification(1)
		case ft < 247:
			return fmt.Errorf("%w: frame type %d", ErrMalformed, ft)
		case ft == 247:
			if _, err = d.c.bytes(2); err == nil {
				err = verification(1)
			}
		case ft <= 251:
			_, err = d.c.bytes(2)
		case ft <= 254:
			if _, err = d.c.bytes(2); err == nil {
				err = verification(int(ft) - 251)
			}
		default:
			err = d.fullFrame(verification)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (d *decoder) fullFrame(verification func(int) error) error {
	if _, err := d.c.bytes(2); err != nil {
		return err
	}

	for range 2 {
		n, err := d.c.u2()
		if err != nil {
			return err
		}

		if err := verification(int(n)); err != nil {
			return err
		}
	}

	return nil
}

func (d *decoder) code() (*CodeAttribute, error) {
	a := &CodeAttribute{}

	var err error
	if a.MaxStack, err = d.c.u2(); err != nil {
		return nil, err
	}

	if a.MaxLocals, err = d.c.u2(); err != nil {
		return nil, err
	}

	size, err := d.c.u4()
	if err != nil {
		return nil, err
	}

	code, err := d.c.bytes(int(size))
	if err != nil {
		return nil, err
	}

	a.Code = append([]byte(nil), code...)

	if a.Insns, err = scanCode(a.Code, d.pool); err != nil {
		return nil, err
	}

	n, err := d.c.u2()
	if err != nil {
		return nil, err
	}

	for range n {
		var h ExceptionHandler
		if h.Start, err = d.c.u2(); err != nil {
			return nil, err
		}

		if h.End, err = d.c.u2(); err != nil {
			return nil, err
		}

		if h.Handler, err = d.c.u2(); err != nil {
			return nil, err
		}

		if h.CatchType, err = d.class(); err != nil {
			return nil, err
		}

		a.Handlers = append(a.Handlers, h)
	}

	if a.Attributes, err = d.attributes(); err != nil {
		return nil, err
	}

	return a, nil
}

func (d *decoder) innerClasses() (*InnerClassesAttribute, error) {
	n, err := d.c.u2()
	if err != nil {
		return nil, err
	}

	a := &InnerClassesAttribute{}

	for range n {
		var ic InnerClass
		if ic.Inner, err = d.class(); err != nil {
			return nil, err
		}

		if ic.Outer, err = d.class(); err != nil {
			return nil, err
		}

		idx, err := d.c.u2()
		if err != nil {
			return nil, err
		}

		if ic.Name, err = d.pool.optUtf8(idx); err != nil {
			return nil, err
		}

		if ic.Access, err = d.c.u2(); err != nil {
			return nil, err
		}

		a.Classes = append(a.Classes, ic)
	}

	return a, nil
}

func (d *decoder) enclosingMethod() (*EnclosingMethodAttribute, error) {
	owner, err := d.class()
	if err != nil {
		return nil, err
	}

	a := &EnclosingMethodAttribute{Class: owner}

	idx, err := d.c.u2()
	if err != nil {
		return nil, err
	}

	if idx != 0 {
		nat, err := d.pool.get(idx)
		if err != nil {
			return nil, err
		}

		if nat.Tag != TagNameAndType {
			return nil, fmt.Errorf("%w: enclosing method %d", ErrMalformed, idx)
		}

		a.MethodName, a.MethodDesc = nat.Name, nat.Desc
	}

	return a, nil
}

func (d *decoder) record() (*RecordAttribute, error) {
	n, err := d.c.u2()
	if err != nil {
		return nil, err
	}

	a := &RecordAttribute{}

	for range n {
		rc := &RecordComponent{}
		if rc.Name, err = d.utf8(); err != nil {
			return nil, err
		}

		if rc.Desc, err = d.utf8(); err != nil {
			return nil, err
		}

		if rc.Attributes, err = d.attributes(); err != nil {
			return nil, err
		}

		a.Components = append(a.Components, rc)
	}

	return a, nil
}

func (d *decoder) bootstrapMethods() (*BootstrapMethodsAttribute, error) {
	n, err := d.c.u2()
	if err != nil {
		return nil, err
	}

	a := &BootstrapMethodsAttribute{}

	for range n {
		idx, err := d.c.u2()
		if err != nil {
			return nil, err
		}

		mh, err := d.pool.get(idx)
		if err != nil {
			return nil, err
		}

		bm := BootstrapMethod{Method: mh}

		argc, err := d.c.u2()
		if err != nil {
			return nil, err
		}

		for range argc {
			idx, err := d.c.u2()
			if err != nil {
				return nil, err
			}

			arg, err := d.pool.get(idx)
			if err != nil {
				return nil, err
			}

			bm.Args = append(bm.Args, arg)
		}

		a.Methods = append(a.Methods, bm)
	}

	return a, nil
}
