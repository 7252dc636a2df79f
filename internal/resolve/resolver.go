package resolve

import (
	"forgery/internal/mapping"
)

// Resolver searches a set for members without a known declaring class.
type Resolver struct {
	set      *mapping.Set
	provider mapping.InheritanceProvider
}

// NewResolver creates a Resolver. provider may be nil, in which case no
// completion happens.
func NewResolver(set *mapping.Set, provider mapping.InheritanceProvider) *Resolver {
	return &Resolver{set: set, provider: provider}
}

// FieldMatch is a resolved field and the class it was found on.
type FieldMatch struct {
	Owner   mapping.ClassID
	Mapping *mapping.FieldMapping
}

// MethodMatch is a resolved method and the class it was found on.
type MethodMatch struct {
	Owner   mapping.ClassID
	Mapping *mapping.MethodMapping
}

// Field returns the first field mapping matching sig.
func (r *Resolver) Field(sig mapping.FieldSignature) (FieldMatch, bool) {
	var match FieldMatch

	found := r.walk(func(id mapping.ClassID) bool {
		f, ok := r.set.Field(id, sig)
		if ok {
			match = FieldMatch{Owner: id, Mapping: f}
		}

		return ok
	})

	return match, found
}

// Method returns the first method mapping matching sig.
func (r *Resolver) Method(sig mapping.MethodSignature) (MethodMatch, bool) {
	var match MethodMatch

	found := r.walk(func(id mapping.ClassID) bool {
		m, ok := r.set.Method(id, sig)
		if ok {
			match = MethodMatch{Owner: id, Mapping: m}
		}

		return ok
	})

	return match, found
}

// walk visits every top-level class in insertion order and its inner
// subtree breadth first, completing each node before test. It stops at
// the first node for which test returns true.
func (r *Resolver) walk(test func(mapping.ClassID) bool) bool {
	visited := make(map[mapping.ClassID]bool, r.set.Len())

	for _, root := range r.set.TopLevel() {
		if visited[root] {
			continue
		}

		queue := []mapping.ClassID{root}
		visited[root] = true

		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]

			r.set.Complete(id, r.provider)

			if test(id) {
				return true
			}

			for _, child := range r.set.Children(id) {
				if !visited[child] {
					visited[child] = true
					queue = append(queue, child)
				}
			}
		}
	}

	return false
}
