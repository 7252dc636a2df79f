package jvmtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemapSignature(t *testing.T) {
	m := testMapper(map[string]string{
		"a":   "net/Outer",
		"a$b": "net/Outer$Inner",
		"c":   "net/Other",
		"d$e": "net/Flat",
	})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"field", "Ljava/util/List<La;>;", "Ljava/util/List<Lnet/Outer;>;"},
		{"type variable", "TT;", "TT;"},
		{"array of variable", "[TT;", "[TT;"},
		{"wildcards", "Ljava/util/Map<+La;-Lc;*>;", "Ljava/util/Map<+Lnet/Outer;-Lnet/Other;*>;"},
		{"inner class", "La<TT;>.b<Lc;>;", "Lnet/Outer<TT;>.Inner<Lnet/Other;>;"},
		{"inner renamed flat keeps segment", "Ld.e;", "Ld.e;"},
		{
			"class with params",
			"<T:La;U::Ljava/lang/Comparable<TT;>;>Lc;Ljava/lang/Iterable<TT;>;",
			"<T:Lnet/Outer;U::Ljava/lang/Comparable<TT;>;>Lnet/Other;Ljava/lang/Iterable<TT;>;",
		},
		{
			"method",
			"<T:Ljava/lang/Object;>(TT;[La;I)Lc;^Ljava/io/IOException;^TT;",
			"<T:Ljava/lang/Object;>(TT;[Lnet/Outer;I)Lnet/Other;^Ljava/io/IOException;^TT;",
		},
		{"void method", "(La;)V", "(Lnet/Outer;)V"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemapSignature(tt.in, m))
		})
	}
}

func TestRemapSignatureMalformed(t *testing.T) {
	m := testMapper(map[string]string{"a": "net/Outer"})

	for _, in := range []string{"La", "(La;", "<T>La;", "Q"} {
		assert.Equal(t, in, RemapSignature(in, m), in)
	}
}

func TestInnerClassName(t *testing.T) {
	assert.Equal(t, "Inner", InnerClassName("net/Outer$Inner", "b"))
	assert.Equal(t, "", InnerClassName("net/Outer$1", ""))
	assert.Equal(t, "Local", InnerClassName("net/Outer$1Local", "x"))
	assert.Equal(t, "b", InnerClassName("net/Flat", "b"))
}

func TestOuterName(t *testing.T) {
	outer, inner, ok := OuterName("a/B$C")
	assert.True(t, ok)
	assert.Equal(t, "a/B", outer)
	assert.Equal(t, "C", inner)

	_, _, ok = OuterName("a/B")
	assert.False(t, ok)
}

func TestParseClassSignature(t *testing.T) {
	const in = "<T:Ljava/lang/Object;>Lp/Base<TT;>;Lp/Api;Ljava/util/function/Supplier<Lp/Out<TT;>.In;>;"

	sig, err := ParseClassSignature(in)
	if !assert.NoError(t, err) {
		return
	}

	assert.Equal(t, "<T:Ljava/lang/Object;>", sig.TypeParams)
	assert.Equal(t, "Lp/Base<TT;>;", sig.Super)
	assert.Equal(t, []string{"Lp/Api;", "Ljava/util/function/Supplier<Lp/Out<TT;>.In;>;"}, sig.Interfaces)
	assert.Equal(t, in, sig.String())

	assert.Equal(t, "p/Base", SignatureClass(sig.Super))
	assert.Equal(t, "java/util/function/Supplier", SignatureClass(sig.Interfaces[1]))
	assert.Equal(t, "p/Out$In", SignatureClass("Lp/Out<TT;>.In;"))

	for _, bad := range []string{"", "<T:Ljava/lang/Object;>", "Lp/Base;TT;", "Lp/Base"} {
		_, err := ParseClassSignature(bad)
		assert.ErrorIs(t, err, ErrMalformed, bad)
	}
}
