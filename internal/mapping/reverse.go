package mapping

import (
	"maps"
)

// Reverse returns a new set mapping the deobfuscated domain back to the
// obfuscated one. Nesting, parameters and extensions are preserved.
func (s *Set) Reverse() *Set {
	out := NewSet(s.sink)

	s.Walk(func(id ClassID) bool {
		c := s.classes[id]
		rid := out.GetOrCreateClass(s.FullDeobfName(id))
		out.SetDeobfName(rid, c.Obf)

		if c.Extensions != nil {
			out.classes[rid].Extensions = maps.Clone(c.Extensions)
		}

		for _, f := range c.fields {
			rf := out.AddField(rid, s.DeobfField(f), f.Obf.Name)
			rf.Extensions = maps.Clone(f.Extensions)
		}

		for _, m := range c.methods {
			rm := out.AddMethod(rid, s.DeobfMethod(m), m.Obf.Name)
			rm.Extensions = maps.Clone(m.Extensions)

			for _, p := range m.Params {
				out.copyParameter(rm, p)
			}
		}

		return true
	})

	return out
}
