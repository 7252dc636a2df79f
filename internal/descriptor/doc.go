// Package descriptor translates mod metadata between loaders: the
// fabric.mod.json descriptor is read, mods.toml is produced from it, and
// the jar manifest receives the specification and implementation
// attributes.
package descriptor
