package resolve

import (
	"regexp"
	"strings"
)

var syntheticName = regexp.MustCompile(`^(class|field|method|comp)_\d+$`)

// IsSyntheticName reports whether name looks like an intermediate-domain
// placeholder such as "method_1234".
func IsSyntheticName(name string) bool {
	return syntheticName.MatchString(name)
}

// HasLeftoverToken reports whether a remapped symbol string still carries
// an intermediate class or method token.
func HasLeftoverToken(s string) bool {
	return strings.Contains(s, "class_") || strings.Contains(s, "method_")
}
