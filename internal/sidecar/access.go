package sidecar

import (
	"bytes"
	"fmt"
	"strings"

	"forgery/internal/diagnostic"
	"forgery/internal/jvmtype"
	"forgery/internal/resolve"
)

// AccessTransformerEntry is where converted access declarations are
// stored.
const AccessTransformerEntry = "META-INF/accesstransformer.cfg"

// IsAccessWidener reports whether entry holds access declarations.
func IsAccessWidener(entry string) bool {
	return strings.HasSuffix(entry, ".accesswidener")
}

// AccessWidener converts access widener declarations into access
// transformer entries.
type AccessWidener struct {
	remapper *resolve.Remapper
}

// NewAccessWidener creates a converter over remapper.
func NewAccessWidener(remapper *resolve.Remapper) *AccessWidener {
	return &AccessWidener{remapper: remapper}
}

// Convert translates the declarations of entry. The access transformer
// format has no header, so the "accessWidener v1 <namespace>" line is
// written back as "# <header>". Every declaration is echoed as a comment
// above its translation. Unmapped tokens keep their original spelling.
func (a *AccessWidener) Convert(entry string, data []byte) ([]byte, error) {
	var out bytes.Buffer

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	for i, line := range lines {
		if i == 0 {
			if line != "" {
				out.WriteString("# " + line + "\n")
			}

			continue
		}

		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		if err := a.declaration(&out, line); err != nil {
			perr := diagnostic.NewParseError(i+1, line, "%w", err)
			perr.Source = entry

			return nil, perr
		}
	}

	return out.Bytes(), nil
}

func (a *AccessWidener) declaration(out *bytes.Buffer, line string) error {
	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		return fmt.Errorf("want access, kind and owner, got %d fields", len(fields))
	}

	access, kind, owner := fields[0], fields[1], fields[2]

	modifier := "public-f"
	if access == "accessible" {
		modifier = "public"
	}

	rm := a.remapper
	target := jvmtype.ToBinary(rm.Class(owner))

	out.WriteString("# " + line + "\n")

	if kind == "class" || access == "extendable" {
		fmt.Fprintf(out, "%s %s\n", modifier, target)
	}

	switch kind {
	case "class":
	case "method":
		if len(fields) < 5 {
			return fmt.Errorf("method declaration wants name and descriptor, got %d fields", len(fields))
		}

		name, desc := fields[3], fields[4]
		fmt.Fprintf(out, "%s %s %s%s\n", modifier, target, rm.Method(owner, name, desc), rm.MethodDescriptor(desc))
	case "field":
		if len(fields) < 4 {
			return fmt.Errorf("field declaration wants a name, got %d fields", len(fields))
		}

		desc := ""
		if len(fields) > 4 {
			desc = fields[4]
		}

		fmt.Fprintf(out, "%s %s %s\n", modifier, target, rm.Field(owner, fields[3], desc))
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}

	return nil
}
