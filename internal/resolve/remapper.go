package resolve

import (
	"fmt"
	"strings"

	"forgery/internal/diagnostic"
	"forgery/internal/jvmtype"
	"forgery/internal/mapping"
	"forgery/internal/match"
)

// maxSuggestions bounds the "did you mean" list of a lookup miss.
const maxSuggestions = 3

// Remapper renames classes and members through a mapping set, consulting
// the class hierarchy for members referenced through a subtype.
type Remapper struct {
	set      *mapping.Set
	provider mapping.InheritanceProvider
	resolver *Resolver
	sink     *diagnostic.Sink

	// global fallback results keyed by obfuscated signature
	fieldMemo  map[mapping.FieldSignature]string
	methodMemo map[mapping.MethodSignature]string
}

// NewRemapper creates a Remapper over set. provider and sink may be nil.
func NewRemapper(set *mapping.Set, provider mapping.InheritanceProvider, sink *diagnostic.Sink) *Remapper {
	return &Remapper{
		set:        set,
		provider:   provider,
		resolver:   NewResolver(set, provider),
		sink:       sink,
		fieldMemo:  make(map[mapping.FieldSignature]string),
		methodMemo: make(map[mapping.MethodSignature]string),
	}
}

// Set returns the underlying mapping set.
func (r *Remapper) Set() *mapping.Set {
	return r.set
}

// Provider returns the inheritance provider.
func (r *Remapper) Provider() mapping.InheritanceProvider {
	return r.provider
}

// Resolver returns the global resolver.
func (r *Remapper) Resolver() *Resolver {
	return r.resolver
}

// Class maps an internal class name.
func (r *Remapper) Class(name string) string {
	return r.set.MapClass(name)
}

// ClassRef maps the operand of a class constant, which may be an array
// descriptor.
func (r *Remapper) ClassRef(name string) string {
	return jvmtype.RemapClassRef(name, r.Class)
}

// Descriptor maps the class names of a field descriptor.
func (r *Remapper) Descriptor(desc string) string {
	return jvmtype.RemapDescriptor(desc, r.Class)
}

// MethodDescriptor maps the class names of a method descriptor.
func (r *Remapper) MethodDescriptor(desc string) string {
	return jvmtype.RemapDescriptor(desc, r.Class)
}

// Signature maps a generic signature; malformed ones are kept.
func (r *Remapper) Signature(sig string) string {
	return jvmtype.RemapSignature(sig, r.Class)
}

// Field maps a field referenced as owner.name with descriptor desc (desc
// may be empty). Unresolved fields keep their name.
func (r *Remapper) Field(owner, name, desc string) string {
	sig := mapping.FieldSignature{Name: name, Type: desc}

	var found string

	if r.inHierarchy(owner, func(id mapping.ClassID) bool {
		f, ok := r.set.Field(id, sig)
		if ok {
			found = f.Deobf
		}

		return ok
	}) {
		return found
	}

	if v, ok := r.fieldMemo[sig]; ok {
		return v
	}

	out := name
	if m, ok := r.resolver.Field(sig); ok {
		out = m.Mapping.Deobf
	} else {
		r.miss(owner, match.Member{Name: name, Desc: desc}, false)
	}

	r.fieldMemo[sig] = out

	return out
}

// Method maps a method referenced as owner.name with descriptor desc.
// Constructors and static initialisers are never renamed.
func (r *Remapper) Method(owner, name, desc string) string {
	if jvmtype.IsSpecialMethod(name) {
		return name
	}

	sig := mapping.MethodSignature{Name: name, Desc: desc}

	var found string

	if r.inHierarchy(owner, func(id mapping.ClassID) bool {
		m, ok := r.set.Method(id, sig)
		if ok {
			found = m.Deobf
		}

		return ok
	}) {
		return found
	}

	if v, ok := r.methodMemo[sig]; ok {
		return v
	}

	out := name
	if m, ok := r.resolver.Method(sig); ok {
		out = m.Mapping.Deobf
	} else {
		r.miss(owner, match.Member{Name: name, Desc: desc}, true)
	}

	r.methodMemo[sig] = out

	return out
}

// inHierarchy tests owner and then its supertypes breadth first. Classes
// without a mapping are looked through using the provider.
func (r *Remapper) inHierarchy(owner string, test func(mapping.ClassID) bool) bool {
	if owner == "" || strings.HasPrefix(owner, "[") {
		return false
	}

	visited := make(map[string]bool)
	queue := []string{owner}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if visited[name] {
			continue
		}

		visited[name] = true

		if id, ok := r.set.Class(name); ok {
			r.set.Complete(id, r.provider)

			if test(id) {
				return true
			}
		}

		if r.provider == nil {
			continue
		}

		if info, ok := r.provider.ClassInfo(name); ok {
			queue = append(queue, info.Supertypes()...)
		}
	}

	return false
}

// miss reports an unresolved synthetic member together with the closest
// names known on its owner.
func (r *Remapper) miss(owner string, want match.Member, method bool) {
	if !IsSyntheticName(want.Name) {
		return
	}

	var pool []match.Member

	if id, ok := r.set.Class(owner); ok {
		c := r.set.Get(id)
		if method {
			for _, m := range c.Methods() {
				pool = append(pool, match.Member{Name: m.Obf.Name, Desc: m.Obf.Desc})
			}
		} else {
			for _, f := range c.Fields() {
				pool = append(pool, match.Member{Name: f.Obf.Name, Desc: f.Obf.Type})
			}
		}
	}

	symbol := owner + "." + want.Name + want.Desc
	r.sink.Report(diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticInfo,
		Code:        diagnostic.CodeLookupMiss,
		Message:     fmt.Sprintf("no mapping for %s", symbol),
		Symbol:      symbol,
		Suggestions: match.Suggest(want, pool, maxSuggestions),
	})
}
