package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// int -> official and official -> srg, shaped like the tables the
// converter composes.
func chainSets() (*Set, *Set) {
	a := NewSet(nil)
	ca := a.GetOrCreateClass("net/minecraft/class_1")
	a.SetDeobfName(ca, "abc")
	a.AddField(ca, FieldSignature{Name: "field_1", Type: "Lnet/minecraft/class_1;"}, "a")
	a.AddField(ca, FieldSignature{Name: "field_2", Type: "I"}, "b")
	m := a.AddMethod(ca, MethodSignature{Name: "method_1", Desc: "(Lnet/minecraft/class_1;)V"}, "c")
	a.AddParameter(m, 1, "left")
	a.AddParameter(m, 2, "keep")
	a.SetParameterExtension(m, 1, "left:only", "l")
	a.SetParameterExtension(m, 2, "tsrg2:id", "20")
	a.AddMethod(ca, MethodSignature{Name: "method_2", Desc: "()V"}, "d")

	cu := a.GetOrCreateClass("net/minecraft/class_2")
	a.SetDeobfName(cu, "xyz")

	b := NewSet(nil)
	cb := b.GetOrCreateClass("abc")
	b.SetDeobfName(cb, "net/minecraft/world/Thing")
	b.SetExtension(cb, "tsrg2:id", "7")
	b.AddField(cb, FieldSignature{Name: "a"}, "f_1_")
	bm := b.AddMethod(cb, MethodSignature{Name: "c", Desc: "(Labc;)V"}, "m_1_")
	b.AddParameter(bm, 1, "p_1_")
	b.SetParameterExtension(bm, 1, "tsrg2:id", "301")

	return a, b
}

func TestMergeChain(t *testing.T) {
	a, b := chainSets()
	out := Merge(a, b, MergeConfig{Fields: Loose, Methods: Loose})

	id, ok := out.Class("net/minecraft/class_1")
	require.True(t, ok)
	assert.Equal(t, "net/minecraft/world/Thing", out.FullDeobfName(id))
	assert.Equal(t, "7", out.Get(id).Extensions["tsrg2:id"])

	f, ok := out.Field(id, FieldSignature{Name: "field_1", Type: "Lnet/minecraft/class_1;"})
	require.True(t, ok)
	assert.Equal(t, "f_1_", f.Deobf)
	assert.Equal(t, FieldSignature{Name: "f_1_", Type: "Lnet/minecraft/world/Thing;"}, out.DeobfField(f))

	m, ok := out.Method(id, MethodSignature{Name: "method_1", Desc: "(Lnet/minecraft/class_1;)V"})
	require.True(t, ok)
	assert.Equal(t, "m_1_", m.Deobf)
	assert.Equal(t, []ParameterMapping{
		{Index: 1, Name: "p_1_", Extensions: map[string]string{"tsrg2:id": "301", "left:only": "l"}},
		{Index: 2, Name: "keep", Extensions: map[string]string{"tsrg2:id": "20"}},
	}, m.Params)
}

func TestMergeLoosePassThrough(t *testing.T) {
	a, b := chainSets()
	out := Merge(a, b, MergeConfig{})

	id, _ := out.Class("net/minecraft/class_1")

	f, ok := out.Field(id, FieldSignature{Name: "field_2", Type: "I"})
	require.True(t, ok)
	assert.Equal(t, "b", f.Deobf)

	m, ok := out.Method(id, MethodSignature{Name: "method_2", Desc: "()V"})
	require.True(t, ok)
	assert.Equal(t, "d", m.Deobf)

	missing, ok := out.Class("net/minecraft/class_2")
	require.True(t, ok)
	assert.Equal(t, "xyz", out.FullDeobfName(missing))
}

func TestMergeStrict(t *testing.T) {
	a, b := chainSets()
	out := Merge(a, b, MergeConfig{Fields: Strict, Methods: Strict})

	id, _ := out.Class("net/minecraft/class_1")

	_, ok := out.Field(id, FieldSignature{Name: "field_2", Type: "I"})
	assert.False(t, ok)

	_, ok = out.Method(id, MethodSignature{Name: "method_2", Desc: "()V"})
	assert.False(t, ok)

	assert.Len(t, out.Get(id).Fields(), 1)
	assert.Len(t, out.Get(id).Methods(), 1)
}

func TestMergeAmbiguousFieldUnmapped(t *testing.T) {
	a := NewSet(nil)
	ca := a.GetOrCreateClass("k")
	a.AddField(ca, FieldSignature{Name: "x"}, "y")

	b := NewSet(nil)
	cb := b.GetOrCreateClass("k")
	b.AddField(cb, FieldSignature{Name: "y", Type: "I"}, "one")
	b.AddField(cb, FieldSignature{Name: "y", Type: "J"}, "two")

	out := Merge(a, b, MergeConfig{})
	id, _ := out.Class("k")

	f, ok := out.Field(id, FieldSignature{Name: "x"})
	require.True(t, ok)
	assert.Equal(t, "y", f.Deobf)
}
