// Package classfile decodes JVM class files into a symbolic model and
// encodes them back.
//
// Constant pool indices never leave this package. Every reference is held
// as a comparable Constant value: member references carry their owner,
// name and descriptor; classes carry their internal name. Instructions
// that read the pool are listed in Code.Insns next to the raw code bytes,
// attributes with a fixed layout list their references as Refs, and the
// attributes that need structural edits (annotations, inner classes,
// records, bootstrap methods) are modelled.
//
// Encode builds a fresh constant pool from what the model references, so
// a name removed from the model is absent from the output. Constants
// loaded by the one-byte ldc instruction are placed first to keep their
// indices within range.
package classfile
