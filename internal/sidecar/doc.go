// Package sidecar applies the composite renaming to the text artifacts
// shipped next to the classes: the mixin reference map (JSON) and the
// access widener, which is converted to an access transformer.
package sidecar
