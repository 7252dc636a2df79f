package rewrite

import (
	"strings"

	"forgery/internal/classfile"
	"forgery/internal/jvmtype"
)

const lambdaMetafactory = "java/lang/invoke/LambdaMetafactory"

// substituter renames the references of one class. owner is the
// original class name; samDescs holds, per bootstrap method, the
// functional descriptor of lambda call sites.
type substituter struct {
	*Rewriter
	edit
	owner    string
	samDescs map[uint16]string
}

func (r *Rewriter) substitute(cls *classfile.Class) bool {
	s := &substituter{Rewriter: r, owner: cls.Name, samDescs: lambdaDescs(cls)}

	for _, f := range cls.Fields {
		s.set(&f.Name, r.remapper.Field(s.owner, f.Name, f.Desc))
		s.set(&f.Desc, r.remapper.Descriptor(f.Desc))
		s.attributes(f.Attributes)
	}

	for _, m := range cls.Methods {
		s.set(&m.Name, r.remapper.Method(s.owner, m.Name, m.Desc))
		s.set(&m.Desc, r.remapper.MethodDescriptor(m.Desc))
		s.attributes(m.Attributes)
	}

	s.attributes(cls.Attributes)

	s.set(&cls.Name, r.remapper.Class(cls.Name))
	if cls.Super != "" {
		s.set(&cls.Super, r.remapper.Class(cls.Super))
	}

	for i := range cls.Interfaces {
		s.set(&cls.Interfaces[i], r.remapper.Class(cls.Interfaces[i]))
	}

	return s.changed
}

// lambdaDescs collects the functional method descriptor of every
// LambdaMetafactory bootstrap, before any renaming.
func lambdaDescs(cls *classfile.Class) map[uint16]string {
	bsm, ok := classfile.FindAttribute(cls.Attributes, classfile.AttrBootstrapMethods).(*classfile.BootstrapMethodsAttribute)
	if !ok {
		return nil
	}

	out := make(map[uint16]string)

	for i, m := range bsm.Methods {
		if m.Method.Owner != lambdaMetafactory || len(m.Args) == 0 || m.Args[0].Tag != classfile.TagMethodType {
			continue
		}

		out[uint16(i)] = m.Args[0].Text
	}

	return out
}

func (s *substituter) constant(c *classfile.Constant) {
	rm := s.remapper

	switch c.Tag {
	case classfile.TagClass:
		s.set(&c.Text, rm.ClassRef(c.Text))
	case classfile.TagFieldref:
		s.set(&c.Name, rm.Field(c.Owner, c.Name, c.Desc))
		s.set(&c.Desc, rm.Descriptor(c.Desc))
		s.set(&c.Owner, rm.ClassRef(c.Owner))
	case classfile.TagMethodref, classfile.TagInterfaceMethodref:
		s.set(&c.Name, rm.Method(c.Owner, c.Name, c.Desc))
		s.set(&c.Desc, rm.MethodDescriptor(c.Desc))
		s.set(&c.Owner, rm.ClassRef(c.Owner))
	case classfile.TagMethodHandle:
		if c.RefTag == classfile.TagFieldref {
			s.set(&c.Name, rm.Field(c.Owner, c.Name, c.Desc))
			s.set(&c.Desc, rm.Descriptor(c.Desc))
		} else {
			s.set(&c.Name, rm.Method(c.Owner, c.Name, c.Desc))
			s.set(&c.Desc, rm.MethodDescriptor(c.Desc))
		}

		s.set(&c.Owner, rm.ClassRef(c.Owner))
	case classfile.TagMethodType:
		s.set(&c.Text, rm.MethodDescriptor(c.Text))
	case classfile.TagDynamic:
		s.set(&c.Desc, rm.Descriptor(c.Desc))
	case classfile.TagInvokeDynamic:
		if sam, ok := s.samDescs[c.Bootstrap]; ok {
			if iface := jvmtype.ReturnClass(c.Desc); iface != "" {
				s.set(&c.Name, rm.Method(iface, c.Name, sam))
			}
		}

		s.set(&c.Desc, rm.MethodDescriptor(c.Desc))
	}
}

func (s *substituter) attributes(attrs []classfile.Attribute) {
	for _, a := range attrs {
		switch a := a.(type) {
		case *classfile.RawAttribute:
			s.refs(a.Refs)
		case *classfile.CodeAttribute:
			for i := range a.Insns {
				s.constant(&a.Insns[i].Const)
			}

			for i := range a.Handlers {
				if a.Handlers[i].CatchType != "" {
					s.set(&a.Handlers[i].CatchType, s.remapper.Class(a.Handlers[i].CatchType))
				}
			}

			s.attributes(a.Attributes)
		case *classfile.AnnotationsAttribute:
			s.annotations(a.Annotations)
		case *classfile.ParameterAnnotationsAttribute:
			for _, p := range a.Parameters {
				s.annotations(p)
			}
		case *classfile.TypeAnnotationsAttribute:
			for _, ta := range a.Annotations {
				s.annotation(ta.Annotation)
			}
		case *classfile.AnnotationDefaultAttribute:
			s.elementValue(&a.Value)
		case *classfile.InnerClassesAttribute:
			s.innerClasses(a)
		case *classfile.EnclosingMethodAttribute:
			if a.MethodName != "" {
				s.set(&a.MethodName, s.remapper.Method(a.Class, a.MethodName, a.MethodDesc))
				s.set(&a.MethodDesc, s.remapper.MethodDescriptor(a.MethodDesc))
			}

			s.set(&a.Class, s.remapper.Class(a.Class))
		case *classfile.RecordAttribute:
			for _, rc := range a.Components {
				s.set(&rc.Name, s.remapper.Field(s.owner, rc.Name, rc.Desc))
				s.set(&rc.Desc, s.remapper.Descriptor(rc.Desc))
				s.attributes(rc.Attributes)
			}
		case *classfile.BootstrapMethodsAttribute:
			for i := range a.Methods {
				s.constant(&a.Methods[i].Method)

				for j := range a.Methods[i].Args {
					s.constant(&a.Methods[i].Args[j])
				}
			}
		}
	}
}

func (s *substituter) refs(refs []classfile.Ref) {
	for i := range refs {
		c := &refs[i].Const

		switch refs[i].Role {
		case classfile.RoleClass:
			s.set(&c.Text, s.remapper.ClassRef(c.Text))
		case classfile.RoleDescriptor:
			if strings.HasPrefix(c.Text, "(") {
				s.set(&c.Text, s.remapper.MethodDescriptor(c.Text))
			} else {
				s.set(&c.Text, s.remapper.Descriptor(c.Text))
			}
		case classfile.RoleSignature:
			s.set(&c.Text, s.remapper.Signature(c.Text))
		}
	}
}

func (s *substituter) innerClasses(a *classfile.InnerClassesAttribute) {
	for i := range a.Classes {
		ic := &a.Classes[i]
		inner := s.remapper.Class(ic.Inner)

		if ic.Name != "" {
			s.set(&ic.Name, jvmtype.InnerClassName(inner, ic.Name))
		}

		s.set(&ic.Inner, inner)

		if ic.Outer != "" {
			s.set(&ic.Outer, s.remapper.Class(ic.Outer))
		}
	}
}

func (s *substituter) annotations(anns []*classfile.Annotation) {
	for _, a := range anns {
		s.annotation(a)
	}
}

func (s *substituter) annotation(a *classfile.Annotation) {
	s.set(&a.Type, s.remapper.Descriptor(a.Type))

	for i := range a.Elements {
		s.elementValue(&a.Elements[i].Value)
	}
}

func (s *substituter) elementValue(v *classfile.ElementValue) {
	switch v.Tag {
	case 'e':
		s.set(&v.EnumName, s.remapper.Field(descClass(v.EnumType), v.EnumName, v.EnumType))
		s.set(&v.EnumType, s.remapper.Descriptor(v.EnumType))
	case 'c':
		s.set(&v.Class, s.remapper.Descriptor(v.Class))
	case '@':
		s.annotation(v.Annotation)
	case '[':
		for i := range v.Array {
			s.elementValue(&v.Array[i])
		}
	}
}

// descClass returns the class named by an object descriptor, or "".
func descClass(desc string) string {
	if strings.HasPrefix(desc, "L") && strings.HasSuffix(desc, ";") {
		return desc[1 : len(desc)-1]
	}

	return ""
}
