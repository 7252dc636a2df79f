package rewrite

import (
	"slices"
	"strings"

	"forgery/internal/classfile"
	"forgery/internal/jvmtype"
)

// entryPoint replaces the entry-point interface with the platform base
// class and marks the class with the caller's identifier.
func (r *Rewriter) entryPoint(cls *classfile.Class) bool {
	ep := r.cfg.EntryPoint
	if ep.Interface == "" {
		return false
	}

	i := slices.Index(cls.Interfaces, ep.Interface)
	if i < 0 {
		return false
	}

	cls.Interfaces = slices.Delete(cls.Interfaces, i, i+1)

	visible := classfile.EnsureAnnotations(&cls.Attributes, true)
	visible.Annotations = append(visible.Annotations, &classfile.Annotation{
		Type:     ep.Marker,
		Elements: []classfile.ElementPair{{Name: "value", Value: classfile.StringValue(ep.Caller)}},
	})

	original := cls.Super
	cls.Super = ep.Base

	entrySignature(cls, ep)

	for _, m := range cls.Methods {
		if m.Name != "<init>" {
			continue
		}

		code := m.Code()
		if code == nil {
			continue
		}

		for i := range code.Insns {
			c := &code.Insns[i].Const
			if code.Insns[i].Op == classfile.OpInvokeSpecial && c.Name == "<init>" && c.Owner == original {
				c.Owner = ep.Base
			}
		}
	}

	return true
}

// entrySignature makes the generic class signature agree with the edited
// supertypes. An unreadable signature is dropped.
func entrySignature(cls *classfile.Class, ep EntryPoint) {
	raw, ok := classfile.FindAttribute(cls.Attributes, classfile.AttrSignature).(*classfile.RawAttribute)
	if !ok || len(raw.Refs) == 0 {
		return
	}

	c := &raw.Refs[0].Const

	sig, err := jvmtype.ParseClassSignature(c.Text)
	if err != nil {
		cls.Attributes = classfile.RemoveAttribute(cls.Attributes, classfile.AttrSignature)
		return
	}

	sig.Super = "L" + ep.Base + ";"
	sig.Interfaces = slices.DeleteFunc(sig.Interfaces, func(t string) bool {
		return jvmtype.SignatureClass(t) == ep.Interface
	})

	c.Text = sig.String()
}

// dispatch swaps the platform fragment inside the allocations and
// constructor calls of the dispatch class initialiser.
func (r *Rewriter) dispatch(cls *classfile.Class) bool {
	d := r.cfg.Dispatch
	if d.Class == "" || cls.Name != d.Class {
		return false
	}

	var e edit

	for _, m := range cls.Methods {
		code := m.Code()
		if m.Name != "<clinit>" || code == nil {
			continue
		}

		for i := range code.Insns {
			c := &code.Insns[i].Const

			switch code.Insns[i].Op {
			case classfile.OpNew:
				e.set(&c.Text, strings.ReplaceAll(c.Text, d.From, d.To))
			case classfile.OpInvokeSpecial:
				e.set(&c.Owner, strings.ReplaceAll(c.Owner, d.From, d.To))
			}
		}
	}

	return e.changed
}

// hoist moves the configured annotations from the invisible to the
// visible list of the class and of every member.
func (r *Rewriter) hoist(cls *classfile.Class) bool {
	if len(r.cfg.Hoist) == 0 {
		return false
	}

	changed := r.hoistIn(&cls.Attributes)

	for _, m := range cls.Methods {
		changed = r.hoistIn(&m.Attributes) || changed
	}

	for _, f := range cls.Fields {
		changed = r.hoistIn(&f.Attributes) || changed
	}

	return changed
}

func (r *Rewriter) hoistIn(attrs *[]classfile.Attribute) bool {
	invisible := classfile.Annotations(*attrs, false)
	if invisible == nil {
		return false
	}

	var moved []*classfile.Annotation

	invisible.Annotations = slices.DeleteFunc(invisible.Annotations, func(a *classfile.Annotation) bool {
		if slices.Contains(r.cfg.Hoist, a.Type) {
			moved = append(moved, a)
			return true
		}

		return false
	})

	if len(moved) == 0 {
		return false
	}

	if len(invisible.Annotations) == 0 {
		*attrs = classfile.RemoveAttribute(*attrs, classfile.AttrRuntimeInvisible)
	}

	visible := classfile.EnsureAnnotations(attrs, true)
	visible.Annotations = append(visible.Annotations, moved...)

	return true
}
