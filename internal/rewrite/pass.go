package rewrite

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=Pass -trimprefix=Pass

// Pass is one step of the rewrite pipeline.
type Pass int

const (
	// PassSubstitute renames classes, members, descriptors and signatures.
	PassSubstitute Pass = iota
	// PassEntryPoint turns an entry-point implementation into a marked
	// subclass of the platform base class.
	PassEntryPoint
	// PassDispatch swaps the platform fragment of the dispatch class.
	PassDispatch
	// PassHoist makes configured annotations runtime visible.
	PassHoist
	// PassPropagate renames injector members after their targets.
	PassPropagate
)

// Passes is the fixed pipeline order.
var Passes = []Pass{PassSubstitute, PassEntryPoint, PassDispatch, PassHoist, PassPropagate}

// ParsePass returns the pass called name, ignoring case.
func ParsePass(name string) (Pass, error) {
	for _, p := range Passes {
		if strings.EqualFold(p.String(), name) {
			return p, nil
		}
	}

	return 0, fmt.Errorf("unknown pass %q", name)
}
