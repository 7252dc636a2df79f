package match

import (
	"forgery/internal/jvmtype"
)

// DescriptorCompatibility grades how closely two descriptors agree.
type DescriptorCompatibility int

const (
	// DescIncompatible means the descriptors differ in shape.
	DescIncompatible DescriptorCompatibility = iota
	// DescUnknown means one side carries no descriptor.
	DescUnknown
	// DescSameShape means same arity and primitive layout; only class names differ.
	DescSameShape
	// DescIdentical means byte-equal descriptors.
	DescIdentical
)

// String returns a human-readable name for the compatibility level.
func (c DescriptorCompatibility) String() string {
	switch c {
	case DescIdentical:
		return "identical"
	case DescSameShape:
		return "same_shape"
	case DescUnknown:
		return "unknown"
	case DescIncompatible:
		return "incompatible"
	default:
		return "invalid"
	}
}

// ScoreDescriptor compares two field or method descriptors.
func ScoreDescriptor(a, b string) DescriptorCompatibility {
	switch {
	case a == "" || b == "":
		return DescUnknown
	case a == b:
		return DescIdentical
	}

	erase := func(string) string { return "" }

	if jvmtype.RemapDescriptor(a, erase) == jvmtype.RemapDescriptor(b, erase) {
		return DescSameShape
	}

	return DescIncompatible
}
