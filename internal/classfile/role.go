package classfile

//go:generate go tool stringer -type=Role -trimprefix=Role

// Role says how a raw attribute reference is renamed.
type Role uint8

const (
	// RoleNone is never renamed (local names, source files, constants).
	RoleNone Role = iota
	// RoleClass is a Class constant.
	RoleClass
	// RoleDescriptor is a Utf8 field or method descriptor.
	RoleDescriptor
	// RoleSignature is a Utf8 generic signature.
	RoleSignature
	// RolePackage is a Package constant.
	RolePackage
)
