package classfile

import (
	"fmt"
	"math"
)

// Tag is a constant pool entry kind.
type Tag uint8

// Constant pool tags.
const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

// Method handle reference kinds.
const (
	RefGetField         uint8 = 1
	RefGetStatic        uint8 = 2
	RefPutField         uint8 = 3
	RefPutStatic        uint8 = 4
	RefInvokeVirtual    uint8 = 5
	RefInvokeStatic     uint8 = 6
	RefInvokeSpecial    uint8 = 7
	RefNewInvokeSpecial uint8 = 8
	RefInvokeInterface  uint8 = 9
)

// Constant is a constant pool entry by value. Which fields are used
// depends on Tag:
//
//	Utf8, String, Class, MethodType, Module, Package: Text
//	Integer, Float, Long, Double: Bits
//	Fieldref, Methodref, InterfaceMethodref: Owner, Name, Desc
//	NameAndType: Name, Desc
//	MethodHandle: RefKind, RefTag, Owner, Name, Desc
//	Dynamic, InvokeDynamic: Bootstrap, Name, Desc
//
// Text holds modified UTF-8 bytes as read from the file.
type Constant struct {
	Tag       Tag
	Text      string
	Owner     string
	Name      string
	Desc      string
	Bits      uint64
	RefKind   uint8
	RefTag    Tag
	Bootstrap uint16
}

// Utf8 returns a Utf8 constant.
func Utf8(s string) Constant { return Constant{Tag: TagUtf8, Text: s} }

// ClassConst returns a Class constant for an internal name or array descriptor.
func ClassConst(name string) Constant { return Constant{Tag: TagClass, Text: name} }

// StringConst returns a String constant.
func StringConst(s string) Constant { return Constant{Tag: TagString, Text: s} }

// IntConst returns an Integer constant.
func IntConst(v int32) Constant { return Constant{Tag: TagInteger, Bits: uint64(uint32(v))} }

// LongConst returns a Long constant.
func LongConst(v int64) Constant { return Constant{Tag: TagLong, Bits: uint64(v)} }

// FloatConst returns a Float constant.
func FloatConst(v float32) Constant {
	return Constant{Tag: TagFloat, Bits: uint64(math.Float32bits(v))}
}

// DoubleConst returns a Double constant.
func DoubleConst(v float64) Constant {
	return Constant{Tag: TagDouble, Bits: math.Float64bits(v)}
}

// FieldRef returns a Fieldref constant.
func FieldRef(owner, name, desc string) Constant {
	return Constant{Tag: TagFieldref, Owner: owner, Name: name, Desc: desc}
}

// MethodRef returns a Methodref constant.
func MethodRef(owner, name, desc string) Constant {
	return Constant{Tag: TagMethodref, Owner: owner, Name: name, Desc: desc}
}

// InterfaceMethodRef returns an InterfaceMethodref constant.
func InterfaceMethodRef(owner, name, desc string) Constant {
	return Constant{Tag: TagInterfaceMethodref, Owner: owner, Name: name, Desc: desc}
}

// Int returns the value of an Integer constant.
func (c Constant) Int() int32 { return int32(uint32(c.Bits)) }

// Long returns the value of a Long constant.
func (c Constant) Long() int64 { return int64(c.Bits) }

// Float returns the value of a Float constant.
func (c Constant) Float() float32 { return math.Float32frombits(uint32(c.Bits)) }

// Double returns the value of a Double constant.
func (c Constant) Double() float64 { return math.Float64frombits(c.Bits) }

// IsMemberRef reports field, method and interface method references.
func (c Constant) IsMemberRef() bool {
	return c.Tag == TagFieldref || c.Tag == TagMethodref || c.Tag == TagInterfaceMethodref
}

// slots is the number of pool indices the entry occupies.
func (c Constant) slots() int {
	if c.Tag == TagLong || c.Tag == TagDouble {
		return 2
	}

	return 1
}

func (c Constant) String() string {
	switch c.Tag {
	case TagUtf8:
		return fmt.Sprintf("Utf8 %q", c.Text)
	case TagString:
		return fmt.Sprintf("String %q", c.Text)
	case TagClass:
		return "Class " + c.Text
	case TagMethodType:
		return "MethodType " + c.Text
	case TagModule:
		return "Module " + c.Text
	case TagPackage:
		return "Package " + c.Text
	case TagInteger:
		return fmt.Sprintf("Integer %d", c.Int())
	case TagFloat:
		return fmt.Sprintf("Float %v", c.Float())
	case TagLong:
		return fmt.Sprintf("Long %d", c.Long())
	case TagDouble:
		return fmt.Sprintf("Double %v", c.Double())
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		return fmt.Sprintf("Ref(%d) %s.%s:%s", c.Tag, c.Owner, c.Name, c.Desc)
	case TagNameAndType:
		return fmt.Sprintf("NameAndType %s:%s", c.Name, c.Desc)
	case TagMethodHandle:
		return fmt.Sprintf("MethodHandle(%d) %s.%s:%s", c.RefKind, c.Owner, c.Name, c.Desc)
	case TagDynamic, TagInvokeDynamic:
		return fmt.Sprintf("Dynamic(%d) #%d %s:%s", c.Tag, c.Bootstrap, c.Name, c.Desc)
	default:
		return fmt.Sprintf("Constant(%d)", c.Tag)
	}
}
