package rewrite

import (
	"strings"

	"forgery/internal/classfile"
	"forgery/internal/diagnostic"
	"forgery/internal/jvmtype"
	"forgery/internal/mapping"
	"forgery/internal/match"
	"forgery/internal/resolve"
)

const maxSuggestions = 3

// propagate renames the members of an injector class after the members
// of its targets and rewrites the instructions that reference them.
func (r *Rewriter) propagate(cls *classfile.Class) bool {
	if r.cfg.Injector == "" {
		return false
	}

	invisible := classfile.Annotations(cls.Attributes, false)
	if invisible == nil {
		return false
	}

	var e edit

	for _, ann := range invisible.Annotations {
		if ann.Type != r.cfg.Injector {
			continue
		}

		for _, target := range injectorTargets(ann) {
			r.propagateTarget(cls, target, &e)
		}
	}

	return e.changed
}

// injectorTargets lists the class literals of value and the names of
// targets, in internal form.
func injectorTargets(a *classfile.Annotation) []string {
	var out []string

	for _, el := range a.Elements {
		switch el.Name {
		case "value":
			for _, v := range el.Value.Array {
				if n := descClass(v.Class); v.Tag == 'c' && n != "" {
					out = append(out, n)
				}
			}
		case "targets":
			for _, v := range el.Value.Array {
				if v.Tag == 's' {
					out = append(out, jvmtype.ToInternal(v.Const.Text))
				}
			}
		}
	}

	return out
}

func (r *Rewriter) propagateTarget(cls *classfile.Class, target string, e *edit) {
	set := r.remapper.Set()

	id, ok := r.targetClass(target)
	if !ok {
		r.sink.Report(diagnostic.Diagnostic{
			Severity:    diagnostic.DiagnosticWarning,
			Code:        diagnostic.CodeTargetNotFound,
			Message:     "no mapping for injector target",
			Entry:       cls.Name + ".class",
			Symbol:      target,
			Suggestions: r.suggestClasses(target),
		})

		return
	}

	methods := make(map[mapping.MethodSignature]mapping.MethodSignature)
	fields := make(map[string]mapping.FieldSignature)

	for _, m := range cls.Methods {
		if jvmtype.IsSpecialMethod(m.Name) {
			continue
		}

		mm, ok := findMethod(set, id, m.Name, m.Desc, true)
		if !ok {
			continue
		}

		from := mapping.MethodSignature{Name: m.Name, Desc: m.Desc}
		to := set.DeobfMethod(mm)
		methods[from] = to

		e.set(&m.Name, to.Name)
		e.set(&m.Desc, to.Desc)
	}

	for _, f := range cls.Fields {
		fm, ok := set.Field(id, mapping.FieldSignature{Name: f.Name})
		if !ok {
			continue
		}

		to := set.DeobfField(fm)
		if to.Type == "" {
			to.Type = f.Desc
		}

		fields[f.Name] = to

		e.set(&f.Name, to.Name)
		e.set(&f.Desc, to.Type)
	}

	for _, m := range cls.Methods {
		code := m.Code()
		if code == nil {
			continue
		}

		for i := range code.Insns {
			r.propagateRef(cls.Name, &code.Insns[i].Const, methods, fields, e)
		}
	}
}

func (r *Rewriter) propagateRef(self string, c *classfile.Constant, methods map[mapping.MethodSignature]mapping.MethodSignature, fields map[string]mapping.FieldSignature, e *edit) {
	set := r.remapper.Set()

	switch c.Tag {
	case classfile.TagFieldref:
		if to, ok := fields[c.Name]; ok && c.Owner == self {
			e.set(&c.Name, to.Name)
			e.set(&c.Desc, to.Type)

			return
		}

		if !strings.HasPrefix(c.Name, "field_") || !resolve.IsSyntheticName(c.Name) {
			return
		}

		id, ok := r.targetClass(c.Owner)
		if !ok {
			return
		}

		if fm, ok := set.Field(id, mapping.FieldSignature{Name: c.Name}); ok {
			to := set.DeobfField(fm)
			e.set(&c.Name, to.Name)

			if to.Type != "" {
				e.set(&c.Desc, to.Type)
			}
		}
	case classfile.TagMethodref, classfile.TagInterfaceMethodref:
		if to, ok := methods[mapping.MethodSignature{Name: c.Name, Desc: c.Desc}]; ok && c.Owner == self {
			e.set(&c.Name, to.Name)
			e.set(&c.Desc, to.Desc)

			return
		}

		if !strings.HasPrefix(c.Name, "method_") || !resolve.IsSyntheticName(c.Name) {
			return
		}

		id, ok := r.targetClass(c.Owner)
		if !ok {
			return
		}

		if mm, ok := findMethod(set, id, c.Name, c.Desc, true); ok {
			to := set.DeobfMethod(mm)
			e.set(&c.Name, to.Name)
			e.set(&c.Desc, to.Desc)
		}
	}
}

// targetClass returns the composite mapping of a class named in the
// target domain, completed against the provider. Names unknown to the
// reverse set are tried as intermediate names.
func (r *Rewriter) targetClass(name string) (mapping.ClassID, bool) {
	set := r.remapper.Set()

	intermediate := name
	if r.reverse != nil {
		if id, ok := r.reverse.Class(name); ok {
			intermediate = r.reverse.FullDeobfName(id)
		}
	}

	id, ok := set.Class(intermediate)
	if !ok {
		return mapping.NoClass, false
	}

	set.Complete(id, r.remapper.Provider())

	return id, true
}

// findMethod looks up a method of id by its intermediate signature, then
// by name with desc in the target domain, then by name alone when
// byName is set. Ties go to declaration order.
func findMethod(set *mapping.Set, id mapping.ClassID, name, desc string, byName bool) (*mapping.MethodMapping, bool) {
	if mm, ok := set.Method(id, mapping.MethodSignature{Name: name, Desc: desc}); ok {
		return mm, true
	}

	var first *mapping.MethodMapping

	for _, mm := range set.Get(id).Methods() {
		if mm.Obf.Name != name {
			continue
		}

		if set.DeobfDescriptor(mm.Obf.Desc) == desc {
			return mm, true
		}

		if first == nil {
			first = mm
		}
	}

	if byName && first != nil {
		return first, true
	}

	return nil, false
}

func (r *Rewriter) suggestClasses(name string) []string {
	var pool []match.Member

	if r.reverse != nil {
		for _, id := range r.reverse.TopLevel() {
			pool = append(pool, match.Member{Name: r.reverse.FullObfName(id)})
		}
	}

	return match.Suggest(match.Member{Name: name}, pool, maxSuggestions)
}
