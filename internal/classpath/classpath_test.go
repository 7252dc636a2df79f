package classpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgery/internal/classfile"
	"forgery/internal/diagnostic"
	"forgery/internal/jar"
	"forgery/internal/mapping"
)

type countingSource struct {
	classes map[string][]byte
	calls   map[string]int
}

func (s *countingSource) Class(name string) ([]byte, bool) {
	s.calls[name]++
	data, ok := s.classes[name]

	return data, ok
}

func encode(t *testing.T, cls *classfile.Class) []byte {
	t.Helper()

	data, err := classfile.Encode(cls)
	require.NoError(t, err)

	return data
}

func fixture(t *testing.T) *countingSource {
	t.Helper()

	return &countingSource{
		calls: make(map[string]int),
		classes: map[string][]byte{
			"a/Base": encode(t, &classfile.Class{
				Major:  61,
				Access: classfile.AccPublic | classfile.AccSuper,
				Name:   "a/Base",
				Super:  "java/lang/Object",
				Fields: []*classfile.Member{
					{Access: classfile.AccProtected, Name: "f", Desc: "I"},
				},
				Methods: []*classfile.Member{
					{Access: classfile.AccPublic | classfile.AccAbstract, Name: "run", Desc: "()V"},
				},
			}),
			"a/Child": encode(t, &classfile.Class{
				Major:      61,
				Access:     classfile.AccPublic,
				Name:       "a/Child",
				Super:      "a/Base",
				Interfaces: []string{"java/lang/Runnable"},
			}),
		},
	}
}

func TestClassInfo(t *testing.T) {
	src := fixture(t)
	cp, err := New(0, diagnostic.NewSink(nil), src)
	require.NoError(t, err)

	ci, ok := cp.ClassInfo("a/Base")
	require.True(t, ok)
	assert.Equal(t, "java/lang/Object", ci.Super)
	assert.Equal(t, []mapping.MemberInfo{{Name: "f", Desc: "I", Access: classfile.AccProtected}}, ci.Fields)

	m, ok := ci.Method("run", "()V")
	require.True(t, ok)
	assert.NotZero(t, m.Access&classfile.AccAbstract)

	child, ok := cp.ClassInfo("a/Child")
	require.True(t, ok)
	assert.Equal(t, []string{"a/Base", "java/lang/Runnable"}, child.Supertypes())
}

func TestClassInfoCaches(t *testing.T) {
	src := fixture(t)
	cp, err := New(4, diagnostic.NewSink(nil), src)
	require.NoError(t, err)

	for range 3 {
		_, ok := cp.ClassInfo("a/Base")
		require.True(t, ok)

		_, ok = cp.ClassInfo("a/Missing")
		require.False(t, ok)
	}

	assert.Equal(t, 1, src.calls["a/Base"])
	assert.Equal(t, 1, src.calls["a/Missing"])

	extra := jar.New()
	extra.Put("a/Missing.class", encode(t, &classfile.Class{Major: 61, Name: "a/Missing", Super: "java/lang/Object"}))
	cp.Add(extra)

	_, ok := cp.ClassInfo("a/Missing")
	assert.True(t, ok)
}

func TestFirstSourceWins(t *testing.T) {
	first := jar.New()
	first.Put("x/Y.class", encode(t, &classfile.Class{Major: 61, Name: "x/Y", Super: "x/First"}))

	second := jar.New()
	second.Put("x/Y.class", encode(t, &classfile.Class{Major: 61, Name: "x/Y", Super: "x/Second"}))

	cp, err := New(0, nil, first, second)
	require.NoError(t, err)

	ci, ok := cp.ClassInfo("x/Y")
	require.True(t, ok)
	assert.Equal(t, "x/First", ci.Super)
}

func TestUnreadableHeaderWarns(t *testing.T) {
	broken := jar.New()
	broken.Put("x/Bad.class", []byte{0xCA, 0xFE})

	sink := diagnostic.NewSink(nil)
	cp, err := New(0, sink, broken)
	require.NoError(t, err)

	_, ok := cp.ClassInfo("x/Bad")
	assert.False(t, ok)
	assert.Len(t, sink.Diagnostics().Warnings, 1)
}

func TestCompletionThroughClasspath(t *testing.T) {
	cp, err := New(0, nil, fixture(t))
	require.NoError(t, err)

	set := mapping.NewSet(nil)
	base := set.GetOrCreateClass("a/Base")
	set.SetDeobfName(base, "b/Base")
	set.AddField(base, mapping.FieldSignature{Name: "f", Type: "I"}, "value")

	child := set.GetOrCreateClass("a/Child")
	set.Complete(child, cp)

	fm, ok := set.Field(child, mapping.FieldSignature{Name: "f", Type: "I"})
	require.True(t, ok)
	assert.Equal(t, "value", fm.Deobf)
}
