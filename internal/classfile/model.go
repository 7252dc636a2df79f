package classfile

// Access flags.
const (
	AccPublic     = 0x0001
	AccPrivate    = 0x0002
	AccProtected  = 0x0004
	AccStatic     = 0x0008
	AccFinal      = 0x0010
	AccSuper      = 0x0020
	AccInterface  = 0x0200
	AccAbstract   = 0x0400
	AccSynthetic  = 0x1000
	AccAnnotation = 0x2000
	AccEnum       = 0x4000
	AccModule     = 0x8000
)

// Class is a decoded class file.
type Class struct {
	Minor      uint16
	Major      uint16
	Access     uint16
	Name       string
	Super      string // empty for java/lang/Object and module-info
	Interfaces []string
	Fields     []*Member
	Methods    []*Member
	Attributes []Attribute
}

// Member is a field or a method.
type Member struct {
	Access     uint16
	Name       string
	Desc       string
	Attributes []Attribute
}

// Method returns the method with name and desc.
func (c *Class) Method(name, desc string) *Member {
	for _, m := range c.Methods {
		if m.Name == name && m.Desc == desc {
			return m
		}
	}

	return nil
}

// Field returns the field with name and desc.
func (c *Class) Field(name, desc string) *Member {
	for _, f := range c.Fields {
		if f.Name == name && f.Desc == desc {
			return f
		}
	}

	return nil
}

// Attribute is an entry of an attributes table.
type Attribute interface {
	AttrName() string
}

// Standard attribute names.
const (
	AttrCode                      = "Code"
	AttrRuntimeVisible            = "RuntimeVisibleAnnotations"
	AttrRuntimeInvisible          = "RuntimeInvisibleAnnotations"
	AttrRuntimeVisibleParameter   = "RuntimeVisibleParameterAnnotations"
	AttrRuntimeInvisibleParameter = "RuntimeInvisibleParameterAnnotations"
	AttrRuntimeVisibleType        = "RuntimeVisibleTypeAnnotations"
	AttrRuntimeInvisibleType      = "RuntimeInvisibleTypeAnnotations"
	AttrAnnotationDefault         = "AnnotationDefault"
	AttrInnerClasses              = "InnerClasses"
	AttrEnclosingMethod           = "EnclosingMethod"
	AttrRecord                    = "Record"
	AttrBootstrapMethods          = "BootstrapMethods"
	AttrSignature                 = "Signature"
	AttrStackMapTable             = "StackMapTable"
	AttrLocalVariableTable        = "LocalVariableTable"
	AttrLocalVariableTypeTable    = "LocalVariableTypeTable"
)

// Ref is a constant pool reference at a fixed offset of a raw attribute.
type Ref struct {
	Offset int
	Const  Constant
	Role   Role
}

// RawAttribute keeps the bytes of an attribute. Refs lists the pool
// indices inside Data; they are rewritten on encode. Opaque marks an
// attribute of unknown layout, which cannot be re-encoded.
type RawAttribute struct {
	Name   string
	Data   []byte
	Refs   []Ref
	Opaque bool
}

// AttrName implements Attribute.
func (a *RawAttribute) AttrName() string { return a.Name }

// ExceptionHandler is an entry of a Code exception table. CatchType is
// empty for finally handlers.
type ExceptionHandler struct {
	Start, End, Handler uint16
	CatchType           string
}

// Insn is an instruction that reads the constant pool. Width is the size
// of its index operand (1 for ldc).
type Insn struct {
	Offset int
	Op     byte
	Const  Constant
	Width  uint8
}

// CodeAttribute is a method body.
type CodeAttribute struct {
	MaxStack   uint16
	MaxLocals  uint16
	Code       []byte
	Insns      []Insn
	Handlers   []ExceptionHandler
	Attributes []Attribute
}

// AttrName implements Attribute.
func (a *CodeAttribute) AttrName() string { return AttrCode }

// AnnotationsAttribute is RuntimeVisibleAnnotations or
// RuntimeInvisibleAnnotations.
type AnnotationsAttribute struct {
	Visible     bool
	Annotations []*Annotation
}

// AttrName implements Attribute.
func (a *AnnotationsAttribute) AttrName() string {
	if a.Visible {
		return AttrRuntimeVisible
	}

	return AttrRuntimeInvisible
}

// ParameterAnnotationsAttribute holds the annotations of each parameter.
type ParameterAnnotationsAttribute struct {
	Visible    bool
	Parameters [][]*Annotation
}

// AttrName implements Attribute.
func (a *ParameterAnnotationsAttribute) AttrName() string {
	if a.Visible {
		return AttrRuntimeVisibleParameter
	}

	return AttrRuntimeInvisibleParameter
}

// TypeAnnotation is an annotation on a type use. Target holds the raw
// target_type, target_info and type_path bytes.
type TypeAnnotation struct {
	Target     []byte
	Annotation *Annotation
}

// TypeAnnotationsAttribute is RuntimeVisibleTypeAnnotations or
// RuntimeInvisibleTypeAnnotations.
type TypeAnnotationsAttribute struct {
	Visible     bool
	Annotations []*TypeAnnotation
}

// AttrName implements Attribute.
func (a *TypeAnnotationsAttribute) AttrName() string {
	if a.Visible {
		return AttrRuntimeVisibleType
	}

	return AttrRuntimeInvisibleType
}

// AnnotationDefaultAttribute is the default value of an annotation method.
type AnnotationDefaultAttribute struct {
	Value ElementValue
}

// AttrName implements Attribute.
func (a *AnnotationDefaultAttribute) AttrName() string { return AttrAnnotationDefault }

// InnerClass is an InnerClasses entry; empty strings stand for a zero index.
type InnerClass struct {
	Inner  string
	Outer  string
	Name   string
	Access uint16
}

// InnerClassesAttribute lists nested class relations.
type InnerClassesAttribute struct {
	Classes []InnerClass
}

// AttrName implements Attribute.
func (a *InnerClassesAttribute) AttrName() string { return AttrInnerClasses }

// EnclosingMethodAttribute names the method of a local or anonymous class.
// MethodName and MethodDesc are empty when the class is not enclosed by a
// method.
type EnclosingMethodAttribute struct {
	Class      string
	MethodName string
	MethodDesc string
}

// AttrName implements Attribute.
func (a *EnclosingMethodAttribute) AttrName() string { return AttrEnclosingMethod }

// RecordComponent is a component of a record class.
type RecordComponent struct {
	Name       string
	Desc       string
	Attributes []Attribute
}

// RecordAttribute lists record components.
type RecordAttribute struct {
	Components []*RecordComponent
}

// AttrName implements Attribute.
func (a *RecordAttribute) AttrName() string { return AttrRecord }

// BootstrapMethod is an entry of the BootstrapMethods table. Method is a
// MethodHandle constant.
type BootstrapMethod struct {
	Method Constant
	Args   []Constant
}

// BootstrapMethodsAttribute is indexed by Dynamic and InvokeDynamic
// constants.
type BootstrapMethodsAttribute struct {
	Methods []BootstrapMethod
}

// AttrName implements Attribute.
func (a *BootstrapMethodsAttribute) AttrName() string { return AttrBootstrapMethods }

// FindAttribute returns the first attribute named name.
func FindAttribute(attrs []Attribute, name string) Attribute {
	for _, a := range attrs {
		if a.AttrName() == name {
			return a
		}
	}

	return nil
}

// RemoveAttribute drops every attribute named name.
func RemoveAttribute(attrs []Attribute, name string) []Attribute {
	out := attrs[:0]

	for _, a := range attrs {
		if a.AttrName() != name {
			out = append(out, a)
		}
	}

	return out
}

// Annotations returns the visible or invisible annotation list of attrs,
// or nil.
func Annotations(attrs []Attribute, visible bool) *AnnotationsAttribute {
	for _, a := range attrs {
		if aa, ok := a.(*AnnotationsAttribute); ok && aa.Visible == visible {
			return aa
		}
	}

	return nil
}

// EnsureAnnotations returns the visible or invisible annotation list of
// *attrs, appending an empty one when absent.
func EnsureAnnotations(attrs *[]Attribute, visible bool) *AnnotationsAttribute {
	if aa := Annotations(*attrs, visible); aa != nil {
		return aa
	}

	aa := &AnnotationsAttribute{Visible: visible}
	*attrs = append(*attrs, aa)

	return aa
}

// Code returns the body of m, or nil for abstract and native methods.
func (m *Member) Code() *CodeAttribute {
	if a, ok := FindAttribute(m.Attributes, AttrCode).(*CodeAttribute); ok {
		return a
	}

	return nil
}
