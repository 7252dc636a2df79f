// Package main provides the CLI entrypoint for forgery.
//
// forgery converts a compiled Fabric mod into a Forge mod:
//   - Composes the intermediary and srg mapping tables
//   - Remaps classes, the mixin reference map and the access widener
//   - Translates fabric.mod.json into META-INF/mods.toml
//   - Overlays the runtime helper classes
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
