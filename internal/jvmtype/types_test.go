package jvmtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMapper(names map[string]string) ClassMapper {
	return func(n string) string {
		if v, ok := names[n]; ok {
			return v
		}

		return n
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		desc string
		kind TypeKind
		dims int
	}{
		{"I", KindPrimitive, 0},
		{"Ljava/lang/String;", KindObject, 0},
		{"[[J", KindArray, 2},
		{"[Lnet/minecraft/class_1;", KindArray, 1},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			typ, err := ParseType(tt.desc)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, typ.Kind)
			assert.Equal(t, tt.dims, typ.Dimensions())
			assert.Equal(t, tt.desc, typ.String())
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	for _, desc := range []string{"", "V", "Lfoo", "[", "II", "Q"} {
		_, err := ParseType(desc)
		assert.ErrorIs(t, err, ErrMalformed, desc)
	}
}

func TestMethodDescriptorRemap(t *testing.T) {
	m := testMapper(map[string]string{"a": "net/Foo", "b": "net/Bar"})

	md, err := ParseMethodDescriptor("(I[[La;Lc;)Lb;")
	require.NoError(t, err)
	require.Len(t, md.Params, 3)

	out := md.Remap(m)
	assert.Equal(t, "(I[[Lnet/Foo;Lc;)Lnet/Bar;", out.String())
	assert.Equal(t, 2, out.Params[1].Dimensions(), "array dimensionality is kept")
	assert.Equal(t, "(I[[La;Lc;)Lb;", md.String(), "original is not modified")
}

func TestRemapDescriptor(t *testing.T) {
	m := testMapper(map[string]string{"com/example/A1": "net/TargetA", "Lx": "Ly"})

	assert.Equal(t, "Lnet/TargetA;", RemapDescriptor("Lcom/example/A1;", m))
	assert.Equal(t, "[[Lnet/TargetA;", RemapDescriptor("[[Lcom/example/A1;", m))
	assert.Equal(t, "(ILnet/TargetA;)V", RemapDescriptor("(ILcom/example/A1;)V", m))
	assert.Equal(t, "(JZ)D", RemapDescriptor("(JZ)D", m))
	assert.Equal(t, "LLy;", RemapDescriptor("LLx;", m), "class names starting with L")
	assert.Equal(t, "Lbroken", RemapDescriptor("Lbroken", m))
}

func TestRemapClassRef(t *testing.T) {
	m := testMapper(map[string]string{"a": "net/Foo"})

	assert.Equal(t, "net/Foo", RemapClassRef("a", m))
	assert.Equal(t, "[Lnet/Foo;", RemapClassRef("[La;", m))
	assert.Equal(t, "[I", RemapClassRef("[I", m))
}

func TestReturnClass(t *testing.T) {
	assert.Equal(t, "java/util/function/Supplier", ReturnClass("(I)Ljava/util/function/Supplier;"))
	assert.Equal(t, "", ReturnClass("()V"))
	assert.Equal(t, "", ReturnClass("not a descriptor"))
}
