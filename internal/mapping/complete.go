package mapping

import (
	"forgery/internal/jvmtype"
)

// Complete fills in the mappings a class inherits from its supertypes and
// identity entries for declared members the set does not name. The node
// is flagged before recursing so cyclic hierarchies terminate. Classes the
// provider does not know are flagged and left alone.
func (s *Set) Complete(id ClassID, provider InheritanceProvider) {
	c := s.classes[id]
	if c.completed {
		return
	}

	c.completed = true

	if provider == nil {
		return
	}

	name := s.FullObfName(id)

	info, ok := provider.ClassInfo(name)
	if !ok {
		return
	}

	visited := map[string]bool{name: true}
	for _, super := range info.Supertypes() {
		s.inherit(id, name, super, provider, visited)
	}

	for _, f := range info.Fields {
		sig := FieldSignature{Name: f.Name, Type: f.Desc}
		if _, ok := s.Field(id, sig); !ok {
			s.AddField(id, sig, f.Name)
		}
	}

	for _, m := range info.Methods {
		if jvmtype.IsSpecialMethod(m.Name) {
			continue
		}

		sig := MethodSignature{Name: m.Name, Desc: m.Desc}
		if _, ok := s.Method(id, sig); !ok {
			s.AddMethod(id, sig, m.Name)
		}
	}
}

// inherit copies the inheritable mappings of super into id. Supertypes
// without a node in the set are looked through to their own supertypes.
func (s *Set) inherit(id ClassID, child, super string, provider InheritanceProvider, visited map[string]bool) {
	if visited[super] {
		return
	}

	visited[super] = true

	info, known := provider.ClassInfo(super)

	sid, mapped := s.byObf[super]
	if !mapped {
		if known {
			for _, next := range info.Supertypes() {
				s.inherit(id, child, next, provider, visited)
			}
		}

		return
	}

	s.Complete(sid, provider)

	sc := s.classes[sid]
	dst := s.classes[id]

	for _, f := range sc.fields {
		if known && !inheritable(info, child, super, f.Obf.Name, f.Obf.Type, true) {
			continue
		}

		if _, ok := dst.fieldIndex[f.Obf]; !ok {
			s.AddField(id, f.Obf, f.Deobf)
		}
	}

	for _, m := range sc.methods {
		if jvmtype.IsSpecialMethod(m.Obf.Name) {
			continue
		}

		if known && !inheritable(info, child, super, m.Obf.Name, m.Obf.Desc, false) {
			continue
		}

		if _, ok := dst.methodIndex[m.Obf]; !ok {
			nm := s.AddMethod(id, m.Obf, m.Deobf)
			nm.Params = append(nm.Params, m.Params...)
		}
	}
}

// inheritable applies JVM visibility to a member declared on super. A
// member the provider does not list was itself inherited and is kept.
func inheritable(info *ClassInfo, child, super, name, desc string, field bool) bool {
	var (
		mi MemberInfo
		ok bool
	)

	if field {
		mi, ok = info.Field(name, desc)
	} else {
		mi, ok = info.Method(name, desc)
	}

	if !ok {
		return true
	}

	switch {
	case mi.Access&AccPrivate != 0:
		return false
	case mi.Access&(AccPublic|AccProtected) != 0:
		return true
	default:
		return jvmtype.PackageOf(child) == jvmtype.PackageOf(super)
	}
}

// CompleteAll completes every class of the set.
func (s *Set) CompleteAll(provider InheritanceProvider) {
	for i := range s.classes {
		s.Complete(ClassID(i), provider)
	}
}
