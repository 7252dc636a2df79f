package mapping

import (
	"fmt"
	"strings"

	"forgery/internal/diagnostic"
	"forgery/internal/jvmtype"
)

// Set is a renaming table between two naming domains.
type Set struct {
	classes []*ClassMapping
	top     []ClassID
	byObf   map[string]ClassID
	sink    *diagnostic.Sink
}

// NewSet creates an empty set reporting conflicts to sink (may be nil).
func NewSet(sink *diagnostic.Sink) *Set {
	return &Set{
		byObf: make(map[string]ClassID),
		sink:  sink,
	}
}

// Sink returns the diagnostic sink of the set.
func (s *Set) Sink() *diagnostic.Sink {
	return s.sink
}

// Len returns the number of class mappings, inner ones included.
func (s *Set) Len() int {
	return len(s.classes)
}

// Get returns the node for id.
func (s *Set) Get(id ClassID) *ClassMapping {
	return s.classes[id]
}

// TopLevel returns the top-level ids in insertion order.
func (s *Set) TopLevel() []ClassID {
	return s.top
}

// Children returns the inner class ids of id in insertion order.
func (s *Set) Children(id ClassID) []ClassID {
	return s.classes[id].children
}

// Class looks up a mapping by full obfuscated name.
func (s *Set) Class(fullObf string) (ClassID, bool) {
	id, ok := s.byObf[fullObf]
	return id, ok
}

// GetOrCreateClass returns the mapping for fullObf, creating it and any
// missing outer classes named by '$' separators.
func (s *Set) GetOrCreateClass(fullObf string) ClassID {
	if id, ok := s.byObf[fullObf]; ok {
		return id
	}

	outer, inner, nested := jvmtype.OuterName(fullObf)
	if !nested {
		id := s.newClass(fullObf, NoClass)
		s.top = append(s.top, id)

		return id
	}

	parent := s.GetOrCreateClass(outer)
	id := s.newClass(inner, parent)

	p := s.classes[parent]
	p.children = append(p.children, id)
	p.childByName[inner] = id

	return id
}

func (s *Set) newClass(obf string, parent ClassID) ClassID {
	id := ClassID(len(s.classes))
	s.classes = append(s.classes, &ClassMapping{
		ID:          id,
		Obf:         obf,
		Deobf:       obf,
		Parent:      parent,
		childByName: make(map[string]ClassID),
		fieldIndex:  make(map[FieldSignature]int),
		methodIndex: make(map[MethodSignature]int),
	})

	full := obf
	if parent != NoClass {
		full = s.FullObfName(parent) + "$" + obf
	}

	s.byObf[full] = id

	return id
}

// SetDeobfName names the class. Inner classes accept either the simple
// name or a full "$"-separated name, of which the last segment is kept.
func (s *Set) SetDeobfName(id ClassID, name string) {
	c := s.classes[id]
	if !c.IsTopLevel() {
		if _, simple, ok := jvmtype.OuterName(name); ok {
			name = simple
		}
	}

	if c.named && c.Deobf != name {
		s.conflict(s.FullObfName(id), c.Deobf, name)
		return
	}

	c.Deobf = name
	c.named = true
}

// SetExtension stores format metadata on the class.
func (s *Set) SetExtension(id ClassID, key, value string) {
	c := s.classes[id]
	if c.Extensions == nil {
		c.Extensions = make(map[string]string)
	}

	c.Extensions[key] = value
}

// AddField adds a field mapping to id. A redefinition with a different
// name keeps the first one.
func (s *Set) AddField(id ClassID, sig FieldSignature, deobf string) *FieldMapping {
	c := s.classes[id]
	if i, ok := c.fieldIndex[sig]; ok {
		f := c.fields[i]
		if f.Deobf != deobf {
			s.conflict(s.FullObfName(id)+"."+sig.String(), f.Deobf, deobf)
		}

		return f
	}

	f := &FieldMapping{Obf: sig, Deobf: deobf}
	c.fieldIndex[sig] = len(c.fields)
	c.fields = append(c.fields, f)

	return f
}

// AddMethod adds a method mapping to id. A redefinition with a different
// name keeps the first one.
func (s *Set) AddMethod(id ClassID, sig MethodSignature, deobf string) *MethodMapping {
	c := s.classes[id]
	if i, ok := c.methodIndex[sig]; ok {
		m := c.methods[i]
		if m.Deobf != deobf {
			s.conflict(s.FullObfName(id)+"."+sig.String(), m.Deobf, deobf)
		}

		return m
	}

	m := &MethodMapping{Obf: sig, Deobf: deobf}
	c.methodIndex[sig] = len(c.methods)
	c.methods = append(c.methods, m)

	return m
}

// AddParameter names parameter slot index of m.
func (s *Set) AddParameter(m *MethodMapping, index int, name string) {
	for i := range m.Params {
		if m.Params[i].Index != index {
			continue
		}

		if m.Params[i].Name != name {
			s.conflict(fmt.Sprintf("%s#%d", m.Obf, index), m.Params[i].Name, name)
		}

		return
	}

	m.Params = append(m.Params, ParameterMapping{Index: index, Name: name})
}

// SetParameterExtension stores format metadata on parameter slot index of
// m. It does nothing when the slot is not mapped.
func (s *Set) SetParameterExtension(m *MethodMapping, index int, key, value string) {
	p := m.Parameter(index)
	if p == nil {
		return
	}

	if p.Extensions == nil {
		p.Extensions = make(map[string]string)
	}

	p.Extensions[key] = value
}

// copyParameter adds p to m; its extensions win over those already there.
func (s *Set) copyParameter(m *MethodMapping, p ParameterMapping) {
	s.AddParameter(m, p.Index, p.Name)

	if len(p.Extensions) == 0 {
		return
	}

	dst := m.Parameter(p.Index)
	dst.Extensions = mergeExtensions(dst.Extensions, p.Extensions)
}

func (s *Set) conflict(key, kept, dropped string) {
	s.sink.Warn(diagnostic.CodeMappingConflict,
		fmt.Sprintf("%s already mapped to %q, ignoring %q", key, kept, dropped), "", key)
}

// Field finds the field mapping of id for sig: exact signature first,
// then an untyped entry with the same name, then the only entry carrying
// that name. Several typed candidates without an exact match is a miss.
func (s *Set) Field(id ClassID, sig FieldSignature) (*FieldMapping, bool) {
	c := s.classes[id]
	if i, ok := c.fieldIndex[sig]; ok {
		return c.fields[i], true
	}

	if sig.Type != "" {
		if i, ok := c.fieldIndex[FieldSignature{Name: sig.Name}]; ok {
			return c.fields[i], true
		}
	}

	var found *FieldMapping

	for _, f := range c.fields {
		if f.Obf.Name != sig.Name {
			continue
		}

		if found != nil {
			return nil, false
		}

		found = f
	}

	return found, found != nil
}

// Method finds the method mapping of id for sig.
func (s *Set) Method(id ClassID, sig MethodSignature) (*MethodMapping, bool) {
	c := s.classes[id]
	if i, ok := c.methodIndex[sig]; ok {
		return c.methods[i], true
	}

	return nil, false
}

// FullObfName returns the full obfuscated internal name of id.
func (s *Set) FullObfName(id ClassID) string {
	return s.fullName(id, func(c *ClassMapping) string { return c.Obf })
}

// FullDeobfName returns the full deobfuscated internal name of id.
func (s *Set) FullDeobfName(id ClassID) string {
	return s.fullName(id, func(c *ClassMapping) string { return c.Deobf })
}

func (s *Set) fullName(id ClassID, part func(*ClassMapping) string) string {
	var parts []string

	for cur := id; cur != NoClass; cur = s.classes[cur].Parent {
		parts = append(parts, part(s.classes[cur]))
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	return strings.Join(parts, "$")
}

// MapClass returns the deobfuscated name of a class. Unknown inner classes
// keep their suffix behind the mapped outer name; anything else unknown
// is returned unchanged.
func (s *Set) MapClass(fullObf string) string {
	if id, ok := s.byObf[fullObf]; ok {
		return s.FullDeobfName(id)
	}

	if outer, inner, ok := jvmtype.OuterName(fullObf); ok {
		return s.MapClass(outer) + "$" + inner
	}

	return fullObf
}

// DeobfDescriptor remaps the class names of a field or method descriptor.
func (s *Set) DeobfDescriptor(desc string) string {
	return jvmtype.RemapDescriptor(desc, s.MapClass)
}

// DeobfMethod returns the deobfuscated signature of m.
func (s *Set) DeobfMethod(m *MethodMapping) MethodSignature {
	return MethodSignature{Name: m.Deobf, Desc: s.DeobfDescriptor(m.Obf.Desc)}
}

// DeobfField returns the deobfuscated signature of f.
func (s *Set) DeobfField(f *FieldMapping) FieldSignature {
	return FieldSignature{Name: f.Deobf, Type: s.DeobfDescriptor(f.Obf.Type)}
}

// Walk visits every class depth-first, outer classes before their inner
// classes, in insertion order. Returning false from fn skips the subtree.
func (s *Set) Walk(fn func(id ClassID) bool) {
	visited := make(map[ClassID]bool, len(s.classes))

	var visit func(id ClassID)

	visit = func(id ClassID) {
		if visited[id] {
			return
		}

		visited[id] = true

		if !fn(id) {
			return
		}

		for _, child := range s.classes[id].children {
			visit(child)
		}
	}

	for _, id := range s.top {
		visit(id)
	}
}
