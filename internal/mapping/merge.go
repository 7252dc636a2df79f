package mapping

import (
	"maps"
)

// Merge composes a (X->Y) with b (Y->Z) into a new X->Z set. Classes are
// taken from a only; a class absent from b keeps its Y name. Members
// absent from b follow cfg.
func Merge(a, b *Set, cfg MergeConfig) *Set {
	out := NewSet(a.sink)

	a.Walk(func(id ClassID) bool {
		c := a.classes[id]
		mid := out.GetOrCreateClass(a.FullObfName(id))
		yName := a.FullDeobfName(id)

		bid, inB := b.Class(yName)
		if inB {
			out.SetDeobfName(mid, b.FullDeobfName(bid))
		} else {
			out.SetDeobfName(mid, yName)
		}

		out.classes[mid].Extensions = mergeExtensions(c.Extensions, bClassExtensions(b, bid, inB))

		for _, f := range c.fields {
			var bf *FieldMapping
			if inB {
				bf, _ = b.Field(bid, a.DeobfField(f))
			}

			if bf == nil && cfg.Fields == Strict {
				continue
			}

			name := f.Deobf
			var ext map[string]string

			if bf != nil {
				name = bf.Deobf
				ext = bf.Extensions
			}

			mf := out.AddField(mid, f.Obf, name)
			mf.Extensions = mergeExtensions(f.Extensions, ext)
		}

		for _, m := range c.methods {
			var bm *MethodMapping
			if inB {
				bm, _ = b.Method(bid, a.DeobfMethod(m))
			}

			if bm == nil && cfg.Methods == Strict {
				continue
			}

			name := m.Deobf
			var ext map[string]string

			if bm != nil {
				name = bm.Deobf
				ext = bm.Extensions
			}

			mm := out.AddMethod(mid, m.Obf, name)
			mm.Extensions = mergeExtensions(m.Extensions, ext)
			mergeParams(out, mm, m, bm)
		}

		return true
	})

	return out
}

func bClassExtensions(b *Set, id ClassID, ok bool) map[string]string {
	if !ok {
		return nil
	}

	return b.classes[id].Extensions
}

// mergeExtensions lets right win per key.
func mergeExtensions(left, right map[string]string) map[string]string {
	if left == nil && right == nil {
		return nil
	}

	out := maps.Clone(left)
	if out == nil {
		out = make(map[string]string, len(right))
	}

	maps.Copy(out, right)

	return out
}

func mergeParams(out *Set, dst, left, right *MethodMapping) {
	seen := make(map[int]bool)

	if right != nil {
		for _, p := range right.Params {
			out.copyParameter(dst, p)
			seen[p.Index] = true
		}
	}

	for _, p := range left.Params {
		if !seen[p.Index] {
			out.copyParameter(dst, p)
			continue
		}

		// the right name wins; left metadata fills keys right lacks
		if dp := dst.Parameter(p.Index); dp != nil && len(p.Extensions) > 0 {
			dp.Extensions = mergeExtensions(p.Extensions, dp.Extensions)
		}
	}
}
