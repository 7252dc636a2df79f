package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLong = 1 << 40

// asm assembles code bytes with zero placeholders for pool operands.
type asm struct {
	code  []byte
	insns []Insn
}

func (a *asm) op(b ...byte) *asm {
	a.code = append(a.code, b...)
	return a
}

func (a *asm) ref(op byte, c Constant) *asm {
	w := operandWidth(op)
	a.insns = append(a.insns, Insn{Offset: len(a.code), Op: op, Const: c, Width: w})
	a.code = append(a.code, op)
	a.code = append(a.code, make([]byte, w)...)

	switch op {
	case OpInvokeInterface:
		a.code = append(a.code, 1, 0)
	case OpInvokeDynamic:
		a.code = append(a.code, 0, 0)
	case OpMultiANewArray:
		a.code = append(a.code, 1)
	}

	return a
}

func (a *asm) attr(maxStack, maxLocals uint16, attrs ...Attribute) *CodeAttribute {
	return &CodeAttribute{MaxStack: maxStack, MaxLocals: maxLocals, Code: a.code, Insns: a.insns, Attributes: attrs}
}

func sampleClass() *Class {
	ctor := (&asm{}).
		op(0x2a). // aload_0
		ref(OpInvokeSpecial, MethodRef("java/lang/Object", "<init>", "()V")).
		op(0xb1) // return

	stackMap := &RawAttribute{
		Name: AttrStackMapTable,
		// one full frame: offset 0, locals [Object #], no stack
		Data: []byte{0, 1, 255, 0, 0, 0, 1, 7, 0, 0, 0, 0},
		Refs: []Ref{{Offset: 8, Const: ClassConst("p/Sample"), Role: RoleClass}},
	}

	lambda := Constant{
		Tag: TagMethodHandle, RefKind: RefInvokeStatic, RefTag: TagMethodref,
		Owner: "java/lang/invoke/LambdaMetafactory", Name: "metafactory",
		Desc: "(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodHandle;Ljava/lang/invoke/MethodType;)Ljava/lang/invoke/CallSite;",
	}

	run := (&asm{}).
		ref(OpLdc, StringConst("hello")).
		op(0x57). // pop
		ref(OpGetStatic, FieldRef("p/Sample", "COUNT", "I")).
		op(0x57).
		ref(OpLdc2W, LongConst(sampleLong)).
		op(0x58). // pop2
		ref(OpInvokeInterface, InterfaceMethodRef("java/util/List", "size", "()I")).
		op(0x57).
		ref(OpInvokeDynamic, Constant{Tag: TagInvokeDynamic, Bootstrap: 0, Name: "run", Desc: "()Ljava/lang/Runnable;"}).
		op(0x57).
		ref(OpNew, ClassConst("p/Other")).
		op(0x57).
		op(0xb1)

	return &Class{
		Minor: 0, Major: 61,
		Access:     AccPublic | AccSuper,
		Name:       "p/Sample",
		Super:      "java/lang/Object",
		Interfaces: []string{"p/Marker"},
		Fields: []*Member{{
			Access: AccPublic | AccStatic | AccFinal,
			Name:   "COUNT",
			Desc:   "I",
			Attributes: []Attribute{
				&RawAttribute{Name: "ConstantValue", Data: []byte{0, 0}, Refs: []Ref{{Const: IntConst(3)}}},
			},
		}},
		Methods: []*Member{
			{Access: AccPublic, Name: "<init>", Desc: "()V", Attributes: []Attribute{ctor.attr(1, 1, stackMap)}},
			{
				Access: AccPublic, Name: "run", Desc: "()V",
				Attributes: []Attribute{
					run.attr(2, 1),
					&AnnotationsAttribute{Annotations: []*Annotation{{
						Type: "Lp/Hidden;",
						Elements: []ElementPair{
							{Name: "value", Value: ElementValue{Tag: '[', Array: []ElementValue{ClassValue("Lp/Other;")}}},
							{Name: "side", Value: ElementValue{Tag: 'e', EnumType: "Lp/Side;", EnumName: "CLIENT"}},
							{Name: "n", Value: ElementValue{Tag: 'I', Const: IntConst(7)}},
						},
					}}},
				},
			},
		},
		Attributes: []Attribute{
			&RawAttribute{Name: "SourceFile", Data: []byte{0, 0}, Refs: []Ref{{Const: Utf8("Sample.java")}}},
			&RawAttribute{Name: AttrSignature, Data: []byte{0, 0}, Refs: []Ref{{Const: Utf8("Ljava/lang/Object;Lp/Marker;"), Role: RoleSignature}}},
			&InnerClassesAttribute{Classes: []InnerClass{{Inner: "p/Sample$In", Outer: "p/Sample", Name: "In", Access: AccStatic}}},
			&BootstrapMethodsAttribute{Methods: []BootstrapMethod{{
				Method: lambda,
				Args:   []Constant{{Tag: TagMethodType, Text: "()V"}, {Tag: TagMethodHandle, RefKind: RefInvokeStatic, RefTag: TagMethodref, Owner: "p/Sample", Name: "lambda$0", Desc: "()V"}},
			}}},
		},
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	first, err := Encode(sampleClass())
	require.NoError(t, err)

	parsed, err := Parse(first)
	require.NoError(t, err)

	second, err := Encode(parsed)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second), "re-encoding an unchanged class is byte-identical")

	again, err := Parse(second)
	require.NoError(t, err)

	if diff := cmp.Diff(parsed, again); diff != "" {
		t.Fatalf("model changed after round trip (-first +second):\n%s", diff)
	}

	assert.Equal(t, "p/Sample", parsed.Name)
	assert.Equal(t, []string{"p/Marker"}, parsed.Interfaces)

	run := parsed.Method("run", "()V")
	require.NotNil(t, run, spew.Sdump(parsed.Methods))

	code := run.Code()
	require.NotNil(t, code)
	require.Len(t, code.Insns, 6)
	assert.Equal(t, StringConst("hello"), code.Insns[0].Const)
	assert.Equal(t, FieldRef("p/Sample", "COUNT", "I"), code.Insns[1].Const)
	assert.Equal(t, int64(sampleLong), code.Insns[2].Const.Long())
	assert.Equal(t, InterfaceMethodRef("java/util/List", "size", "()I"), code.Insns[3].Const)
	assert.Equal(t, "run", code.Insns[4].Const.Name)
	assert.Equal(t, ClassConst("p/Other"), code.Insns[5].Const)

	ann := Annotations(run.Attributes, false)
	require.NotNil(t, ann)
	v, ok := ann.Annotations[0].Element("value")
	require.True(t, ok)
	assert.Equal(t, "Lp/Other;", v.Array[0].Class)

	ctor := parsed.Method("<init>", "()V").Code()
	sm, ok := FindAttribute(ctor.Attributes, AttrStackMapTable).(*RawAttribute)
	require.True(t, ok)
	assert.False(t, sm.Opaque)
	assert.Equal(t, []Ref{{Offset: 8, Const: ClassConst("p/Sample"), Role: RoleClass}}, sm.Refs)

	sig, ok := FindAttribute(parsed.Attributes, AttrSignature).(*RawAttribute)
	require.True(t, ok)
	assert.Equal(t, RoleSignature, sig.Refs[0].Role)

	bsm, ok := FindAttribute(parsed.Attributes, AttrBootstrapMethods).(*BootstrapMethodsAttribute)
	require.True(t, ok)
	assert.Equal(t, "metafactory", bsm.Methods[0].Method.Name)
	assert.Equal(t, "lambda$0", bsm.Methods[0].Args[1].Name)
}

func TestEncodeDropsRemovedNames(t *testing.T) {
	cls := sampleClass()

	out, err := Encode(cls)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(out, []byte("p/Marker")))

	cls.Interfaces = nil
	cls.Attributes = RemoveAttribute(cls.Attributes, AttrSignature)

	out, err = Encode(cls)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(out, []byte("p/Marker")))
}

func TestEncodeLdcFirst(t *testing.T) {
	code := &asm{}
	for i := range 300 {
		code.ref(OpLdcW, StringConst(fmt.Sprintf("wide%d", i)))
	}

	for i := range 200 {
		code.ref(OpLdc, StringConst(fmt.Sprintf("narrow%d", i)))
	}

	code.op(0xb1)

	cls := &Class{
		Major: 52, Name: "p/Many", Super: "java/lang/Object",
		Methods: []*Member{{Name: "m", Desc: "()V", Attributes: []Attribute{code.attr(1, 0)}}},
	}

	out, err := Encode(cls)
	require.NoError(t, err)

	parsed, err := Parse(out)
	require.NoError(t, err)

	insns := parsed.Methods[0].Code().Insns
	require.Len(t, insns, 500)
	assert.Equal(t, StringConst("narrow199"), insns[499].Const)
	assert.Equal(t, StringConst("wide0"), insns[0].Const)
}

func TestEncodeLdcOverflow(t *testing.T) {
	code := &asm{}
	for i := range 300 {
		code.ref(OpLdc, IntConst(int32(100000+i)))
	}

	cls := &Class{
		Major: 52, Name: "p/Many", Super: "java/lang/Object",
		Methods: []*Member{{Name: "m", Desc: "()V", Attributes: []Attribute{code.attr(1, 0)}}},
	}

	_, err := Encode(cls)
	require.ErrorIs(t, err, ErrLdcRange)
}

func TestEncodeRejectsOpaque(t *testing.T) {
	cls := sampleClass()
	cls.Attributes = append(cls.Attributes, &RawAttribute{Name: "Vendor", Data: []byte{1, 2}, Opaque: true})

	_, err := Encode(cls)
	require.ErrorIs(t, err, ErrOpaque)
}

func TestParseUnknownAttributeIsOpaque(t *testing.T) {
	cls := sampleClass()
	cls.Attributes = append(cls.Attributes, &RawAttribute{Name: "Vendor", Data: []byte{1, 2}})

	out, err := Encode(cls)
	require.NoError(t, err)

	parsed, err := Parse(out)
	require.NoError(t, err)

	raw, ok := FindAttribute(parsed.Attributes, "Vendor").(*RawAttribute)
	require.True(t, ok)
	assert.True(t, raw.Opaque)
	assert.Equal(t, []byte{1, 2}, raw.Data)
}

func TestParseHeader(t *testing.T) {
	out, err := Encode(sampleClass())
	require.NoError(t, err)

	hdr, err := ParseHeader(out)
	require.NoError(t, err)
	assert.Equal(t, "java/lang/Object", hdr.Super)
	require.Len(t, hdr.Methods, 2)
	assert.Empty(t, hdr.Methods[0].Attributes)
	assert.Empty(t, hdr.Attributes)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte{0, 1, 2, 3})
	require.ErrorIs(t, err, ErrBadMagic)

	out, err := Encode(sampleClass())
	require.NoError(t, err)

	_, err = Parse(out[:len(out)-3])
	require.ErrorIs(t, err, ErrTruncated)
}

func TestInsnLengthSwitches(t *testing.T) {
	// nop, tableswitch at 1: pad 2, default, low 0, high 1, two offsets
	code := []byte{0x00, opTableSwitch, 0, 0}
	code = binary.BigEndian.AppendUint32(code, 0)
	code = binary.BigEndian.AppendUint32(code, 0)
	code = binary.BigEndian.AppendUint32(code, 1)
	code = binary.BigEndian.AppendUint32(code, 0)
	code = binary.BigEndian.AppendUint32(code, 0)

	n, err := insnLength(code, 1)
	require.NoError(t, err)
	assert.Equal(t, len(code)-1, n)

	// lookupswitch at 0: pad 3, default, one pair
	look := []byte{opLookupSwitch, 0, 0, 0}
	look = binary.BigEndian.AppendUint32(look, 0)
	look = binary.BigEndian.AppendUint32(look, 1)
	look = binary.BigEndian.AppendUint32(look, 5)
	look = binary.BigEndian.AppendUint32(look, 0)

	n, err = insnLength(look, 0)
	require.NoError(t, err)
	assert.Equal(t, len(look), n)

	n, err = insnLength([]byte{OpWide, opIinc, 0, 1, 0, 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	_, err = insnLength([]byte{0xfe}, 0)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "Descriptor", RoleDescriptor.String())
	assert.Equal(t, "Role(9)", Role(9).String())
}
