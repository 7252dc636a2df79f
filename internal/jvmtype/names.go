package jvmtype

import (
	"strings"
	"unicode"
)

// ToInternal converts a binary class name ("a.b.C") to internal form.
func ToInternal(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}

// ToBinary converts an internal class name to the dotted binary form used
// by reflection and access transformer files.
func ToBinary(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// PackageOf returns the package part of an internal name ("" for the
// default package).
func PackageOf(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[:i]
	}

	return ""
}

// OuterName splits "a/B$C" into "a/B" and "C". ok is false for top-level names.
func OuterName(name string) (outer, inner string, ok bool) {
	i := strings.LastIndexByte(name, '$')
	if i <= 0 || i == len(name)-1 {
		return name, "", false
	}

	return name[:i], name[i+1:], true
}

// InnerClassName derives the simple name recorded in an InnerClasses entry
// from the renamed full name; leading digits of anonymous/local classes
// are dropped. The original simple name is kept when the renamed class is
// not nested.
func InnerClassName(renamed, original string) string {
	i := strings.LastIndexByte(renamed, '$')
	if i < 0 {
		return original
	}

	rest := renamed[i+1:]

	return strings.TrimLeftFunc(rest, unicode.IsDigit)
}

// IsSpecialMethod reports constructor and static-initialiser names.
func IsSpecialMethod(name string) bool {
	return name == "<init>" || name == "<clinit>"
}
