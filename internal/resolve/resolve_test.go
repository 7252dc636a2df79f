package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"forgery/internal/diagnostic"
	"forgery/internal/mapping"
)

// compositeFixture chains A1 -> ClassA -> net/TargetA and
// f1:I -> fieldA -> targetField.
func compositeFixture(t *testing.T) *mapping.Set {
	t.Helper()

	a := mapping.NewSet(nil)
	ca := a.GetOrCreateClass("A1")
	a.SetDeobfName(ca, "ClassA")
	a.AddField(ca, mapping.FieldSignature{Name: "f1", Type: "I"}, "fieldA")

	b := mapping.NewSet(nil)
	cb := b.GetOrCreateClass("ClassA")
	b.SetDeobfName(cb, "net/TargetA")
	b.AddField(cb, mapping.FieldSignature{Name: "fieldA", Type: "I"}, "targetField")

	return mapping.Merge(a, b, mapping.MergeConfig{})
}

func TestRemapperEndToEndField(t *testing.T) {
	r := NewRemapper(compositeFixture(t), nil, nil)

	assert.Equal(t, "net/TargetA", r.Class("A1"))
	assert.Equal(t, "targetField", r.Field("A1", "f1", "I"))
	assert.Equal(t, "Lnet/TargetA;", r.Descriptor("LA1;"))
	assert.Equal(t, "[Lnet/TargetA;", r.ClassRef("[LA1;"))
	assert.Equal(t, "Ljava/util/List<Lnet/TargetA;>;", r.Signature("Ljava/util/List<LA1;>;"))
}

func TestRemapperHierarchy(t *testing.T) {
	set := mapping.NewSet(nil)
	base := set.GetOrCreateClass("p/Base")
	set.SetDeobfName(base, "net/Base")
	set.AddMethod(base, mapping.MethodSignature{Name: "method_1", Desc: "()V"}, "tick")

	provider := mapping.StaticProvider{
		"p/Base":  {Name: "p/Base", Methods: []mapping.MemberInfo{{Name: "method_1", Desc: "()V", Access: mapping.AccPublic}}},
		"q/Mid":   {Name: "q/Mid", Super: "p/Base"},
		"q/Child": {Name: "q/Child", Super: "q/Mid"},
	}

	r := NewRemapper(set, provider, nil)

	assert.Equal(t, "tick", r.Method("q/Child", "method_1", "()V"), "resolved through unmapped supertypes")
	assert.Equal(t, "<init>", r.Method("p/Base", "<init>", "()V"))
	assert.Equal(t, "clone", r.Method("[Lp/Base;", "clone", "()Ljava/lang/Object;"))
}

func TestRemapperGlobalFallback(t *testing.T) {
	set := mapping.NewSet(nil)
	impl := set.GetOrCreateClass("p/Impl")
	set.AddMethod(impl, mapping.MethodSignature{Name: "method_9", Desc: "(I)Z"}, "accepts")

	r := NewRemapper(set, nil, nil)

	// interface dispatch through a type the set does not know
	assert.Equal(t, "accepts", r.Method("p/Iface", "method_9", "(I)Z"))
	assert.Equal(t, "accepts", r.Method("p/Other", "method_9", "(I)Z"), "memoized")
	assert.Equal(t, "size", r.Method("java/util/List", "size", "()I"))
}

func TestRemapperLookupMissDiagnostic(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := diagnostic.NewSink(zap.New(core))

	set := mapping.NewSet(sink)
	id := set.GetOrCreateClass("p/A")
	set.AddField(id, mapping.FieldSignature{Name: "field_100", Type: "I"}, "count")

	r := NewRemapper(set, nil, sink)

	assert.Equal(t, "field_101", r.Field("p/A", "field_101", "I"))
	assert.Equal(t, "plain", r.Field("p/A", "plain", "I"))

	d := sink.Diagnostics()
	require.Len(t, d.Infos, 1)
	assert.Equal(t, diagnostic.CodeLookupMiss, d.Infos[0].Code)
	assert.Equal(t, []string{"field_100:I"}, d.Infos[0].Suggestions)
	assert.Equal(t, 1, logs.Len())
}

func TestResolverOrder(t *testing.T) {
	set := mapping.NewSet(nil)
	first := set.GetOrCreateClass("z")
	inner := set.GetOrCreateClass("z$i")
	second := set.GetOrCreateClass("a")

	set.AddField(inner, mapping.FieldSignature{Name: "x"}, "fromInner")
	set.AddField(second, mapping.FieldSignature{Name: "x"}, "fromSecond")

	m, ok := NewResolver(set, nil).Field(mapping.FieldSignature{Name: "x"})
	require.True(t, ok)
	assert.Equal(t, inner, m.Owner, "the first top-level subtree wins")
	assert.Equal(t, "fromInner", m.Mapping.Deobf)
	assert.NotEqual(t, first, m.Owner)

	_, ok = NewResolver(set, nil).Method(mapping.MethodSignature{Name: "x", Desc: "()V"})
	assert.False(t, ok)
}

func TestResolverCyclicHierarchyTerminates(t *testing.T) {
	set := mapping.NewSet(nil)
	for _, n := range []string{"A", "B", "C"} {
		set.GetOrCreateClass(n)
	}

	provider := mapping.StaticProvider{
		"A": {Name: "A", Super: "B", Interfaces: []string{"C"}},
		"B": {Name: "B", Super: "C"},
		"C": {Name: "C", Super: "A", Interfaces: []string{"B"}},
	}

	r := NewRemapper(set, provider, nil)

	_, ok := r.Resolver().Method(mapping.MethodSignature{Name: "missing", Desc: "()V"})
	assert.False(t, ok)
	assert.Equal(t, "missing", r.Method("A", "missing", "()V"))
	assert.Equal(t, "gone", r.Field("C", "gone", ""))
}

func TestSyntheticPatterns(t *testing.T) {
	assert.True(t, IsSyntheticName("method_1234"))
	assert.True(t, IsSyntheticName("comp_5"))
	assert.False(t, IsSyntheticName("method_"))
	assert.False(t, IsSyntheticName("m_1234_"))

	assert.True(t, HasLeftoverToken("Lnet/minecraft/class_12;"))
	assert.False(t, HasLeftoverToken("Lnet/TargetA;targetField:I"))
}
