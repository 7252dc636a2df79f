// Package jvmtype models JVM type descriptors, method descriptors and
// generic signatures, and rewrites the class names embedded in them.
//
// Class names are handled in internal form ("net/minecraft/Foo$Bar").
// Every rewrite takes a ClassMapper; primitive types, array dimensions
// and type variables are never touched.
//
// # Grammar
//
//	FieldType       = BaseType | "L" ClassName ";" | "[" FieldType
//	MethodDesc      = "(" FieldType* ")" (FieldType | "V")
//	ClassTypeSig    = "L" Name TypeArgs? ("." Simple TypeArgs?)* ";"
//
// Signatures follow JVMS 4.7.9.1; inner class segments of a class type
// signature are resolved against the remapped outer class.
package jvmtype
