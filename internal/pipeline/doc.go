// Package pipeline runs one conversion end to end: it loads the input
// module and the mapping tables, composes them, rewrites every entry and
// the runtime overlay in memory, and writes the output module only when
// all of that succeeded.
package pipeline
