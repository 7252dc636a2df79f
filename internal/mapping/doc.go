// Package mapping holds renaming tables between two naming domains.
//
// A Set is an arena of class mappings addressed by ClassID. Every class
// mapping carries its obfuscated and deobfuscated simple names, its field
// and method mappings in insertion order, parameter names and an opaque
// extension map used by formats that tag entries (for example the tsrg2
// "id" column).
//
// # Operations
//
//   - GetOrCreateClass / AddField / AddMethod / AddParameter build a set;
//     redefining a key with a different value is reported as a
//     mapping_conflict warning and the first value is kept.
//   - Reverse swaps the two domains.
//   - Merge composes A (X->Y) with B (Y->Z) into X->Z.
//   - Complete synthesizes inherited and identity entries from an
//     InheritanceProvider so that members referenced through a subclass
//     resolve to the superclass's mapping.
//
// Inner classes are children of their outer class; their full names are
// the outer full name, a '$', and the simple name.
package mapping
