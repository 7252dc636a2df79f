package mapping

import (
	"fmt"
)

// ClassID addresses a ClassMapping inside its Set.
type ClassID int

// NoClass is the parent of top-level mappings.
const NoClass ClassID = -1

// FieldSignature keys a field mapping. Type is a field descriptor and may
// be empty when the source format does not record it.
type FieldSignature struct {
	Name string
	Type string
}

func (s FieldSignature) String() string {
	if s.Type == "" {
		return s.Name
	}

	return s.Name + ":" + s.Type
}

// MethodSignature keys a method mapping.
type MethodSignature struct {
	Name string
	Desc string
}

func (s MethodSignature) String() string {
	return s.Name + s.Desc
}

// FieldMapping renames one field.
type FieldMapping struct {
	Obf        FieldSignature
	Deobf      string
	Extensions map[string]string
}

// ParameterMapping names one method parameter by slot index.
type ParameterMapping struct {
	Index      int
	Name       string
	Extensions map[string]string
}

// MethodMapping renames one method. The deobfuscated descriptor is not
// stored; it is derived from Obf.Desc through the owning set.
type MethodMapping struct {
	Obf        MethodSignature
	Deobf      string
	Params     []ParameterMapping
	Extensions map[string]string
}

// Param returns the name mapped for slot index.
func (m *MethodMapping) Param(index int) (string, bool) {
	for _, p := range m.Params {
		if p.Index == index {
			return p.Name, true
		}
	}

	return "", false
}

// Parameter returns the mapping of slot index, or nil.
func (m *MethodMapping) Parameter(index int) *ParameterMapping {
	for i := range m.Params {
		if m.Params[i].Index == index {
			return &m.Params[i]
		}
	}

	return nil
}

// ClassMapping is one node of the arena.
type ClassMapping struct {
	ID ClassID
	// Obf and Deobf are simple names for inner classes and full internal
	// names for top-level classes.
	Obf        string
	Deobf      string
	Parent     ClassID
	Extensions map[string]string

	named       bool
	completed   bool
	children    []ClassID
	childByName map[string]ClassID
	fields      []*FieldMapping
	fieldIndex  map[FieldSignature]int
	methods     []*MethodMapping
	methodIndex map[MethodSignature]int
}

// IsTopLevel reports whether the mapping has no outer class.
func (c *ClassMapping) IsTopLevel() bool {
	return c.Parent == NoClass
}

// Completed reports whether Complete already ran for this node.
func (c *ClassMapping) Completed() bool {
	return c.completed
}

// Fields returns the field mappings in insertion order.
func (c *ClassMapping) Fields() []*FieldMapping {
	return c.fields
}

// Methods returns the method mappings in insertion order.
func (c *ClassMapping) Methods() []*MethodMapping {
	return c.methods
}

// Policy decides what Merge does with a member missing from the right set.
type Policy int

const (
	// Loose keeps the left-hand name.
	Loose Policy = iota
	// Strict drops the member.
	Strict
)

func (p Policy) String() string {
	switch p {
	case Loose:
		return "loose"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// MergeConfig selects the member policies of Merge.
type MergeConfig struct {
	Fields  Policy
	Methods Policy
}

// Access flags consulted by completion.
const (
	AccPublic    = 0x0001
	AccPrivate   = 0x0002
	AccProtected = 0x0004
	AccStatic    = 0x0008
	AccFinal     = 0x0010
)

// MemberInfo describes one declared field or method.
type MemberInfo struct {
	Name   string
	Desc   string
	Access uint16
}

// ClassInfo is the header of a class as seen by an InheritanceProvider.
type ClassInfo struct {
	Name       string
	Super      string
	Interfaces []string
	Access     uint16
	Fields     []MemberInfo
	Methods    []MemberInfo
}

// Supertypes returns the superclass (when present) followed by the
// interfaces.
func (ci *ClassInfo) Supertypes() []string {
	out := make([]string, 0, len(ci.Interfaces)+1)
	if ci.Super != "" {
		out = append(out, ci.Super)
	}

	return append(out, ci.Interfaces...)
}

// Field returns the declared field with name and descriptor. An empty
// desc matches by name only.
func (ci *ClassInfo) Field(name, desc string) (MemberInfo, bool) {
	for _, f := range ci.Fields {
		if f.Name == name && (desc == "" || f.Desc == desc) {
			return f, true
		}
	}

	return MemberInfo{}, false
}

// Method returns the declared method with name and descriptor.
func (ci *ClassInfo) Method(name, desc string) (MemberInfo, bool) {
	for _, m := range ci.Methods {
		if m.Name == name && m.Desc == desc {
			return m, true
		}
	}

	return MemberInfo{}, false
}

// InheritanceProvider answers questions about classes outside the set.
type InheritanceProvider interface {
	ClassInfo(name string) (*ClassInfo, bool)
}

// StaticProvider is an InheritanceProvider over a fixed map.
type StaticProvider map[string]*ClassInfo

// ClassInfo implements InheritanceProvider.
func (p StaticProvider) ClassInfo(name string) (*ClassInfo, bool) {
	ci, ok := p[name]
	return ci, ok
}
