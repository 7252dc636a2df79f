package mapio

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"forgery/internal/diagnostic"
	"forgery/internal/jvmtype"
	"forgery/internal/mapping"
)

// ErrNamespace is wrapped by errors for a namespace the header does not
// declare.
var ErrNamespace = errors.New("unknown namespace")

type tinyMember struct {
	owner  string
	name   []string
	desc   string
	method bool
	params []tinyParam
}

type tinyParam struct {
	index int
	name  []string
}

// tinyTable holds the rows of a tiny file before namespace selection.
// Descriptors and owners are expressed in the first namespace.
type tinyTable struct {
	namespaces []string
	classes    [][]string
	members    []*tinyMember
}

// ReadTiny reads a tiny v1 or v2 table and returns the from -> to set.
func ReadTiny(r io.Reader, from, to string, sink *diagnostic.Sink) (*mapping.Set, error) {
	t := &tinyTable{}

	var (
		v2      bool
		escaped bool
		member  *tinyMember
		owner   string
	)

	err := eachLine(r, func(lineNo int, raw string) error {
		if lineNo == 1 {
			cols := strings.Split(raw, "\t")

			switch {
			case len(cols) >= 3 && cols[0] == "v1":
				t.namespaces = cols[1:]
			case len(cols) >= 5 && cols[0] == "tiny" && cols[1] == "2":
				v2 = true
				t.namespaces = cols[3:]
			default:
				return parseErr(lineNo, raw, "not a tiny header")
			}

			return nil
		}

		if raw == "" {
			return nil
		}

		if !v2 {
			return t.v1Row(lineNo, raw)
		}

		d := depth(raw)
		cols := strings.Split(raw[d:], "\t")

		if escaped {
			for i := range cols {
				cols[i] = unescape(cols[i])
			}
		}

		n := len(t.namespaces)

		switch {
		case d == 0 && cols[0] == "c":
			if len(cols) != n+1 {
				return parseErr(lineNo, raw, "class row needs %d names", n)
			}

			t.classes = append(t.classes, cols[1:])
			owner = cols[1]
			member = nil
		case d == 1 && owner == "" && len(cols) >= 1 && cols[0] == "escaped-names":
			escaped = true
		case d == 1 && owner == "":
			// other header properties
		case d == 1 && (cols[0] == "f" || cols[0] == "m"):
			if len(cols) != n+2 {
				return parseErr(lineNo, raw, "member row needs a descriptor and %d names", n)
			}

			member = &tinyMember{owner: owner, desc: cols[1], name: cols[2:], method: cols[0] == "m"}
			t.members = append(t.members, member)
		case d == 2 && cols[0] == "p" && member != nil && member.method:
			if len(cols) != n+2 {
				return parseErr(lineNo, raw, "parameter row needs an index and %d names", n)
			}

			idx, err := strconv.Atoi(cols[1])
			if err != nil {
				return &diagnostic.ParseError{Line: lineNo, Text: raw, Err: fmt.Errorf("parameter index: %w", err)}
			}

			member.params = append(member.params, tinyParam{index: idx, name: cols[2:]})
		case cols[0] == "c" || cols[0] == "v":
			// comments and local variables
		default:
			return parseErr(lineNo, raw, "unexpected row %q at depth %d", cols[0], d)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t.build(from, to, sink)
}

func (t *tinyTable) v1Row(lineNo int, raw string) error {
	if strings.HasPrefix(raw, "#") {
		return nil
	}

	cols := strings.Split(raw, "\t")
	n := len(t.namespaces)

	switch cols[0] {
	case "CLASS":
		if len(cols) != n+1 {
			return parseErr(lineNo, raw, "CLASS row needs %d names", n)
		}

		t.classes = append(t.classes, cols[1:])
	case "FIELD", "METHOD":
		if len(cols) != n+3 {
			return parseErr(lineNo, raw, "%s row needs owner, descriptor and %d names", cols[0], n)
		}

		t.members = append(t.members, &tinyMember{
			owner:  cols[1],
			desc:   cols[2],
			name:   cols[3:],
			method: cols[0] == "METHOD",
		})
	default:
		return parseErr(lineNo, raw, "unknown row kind %q", cols[0])
	}

	return nil
}

func (t *tinyTable) build(from, to string, sink *diagnostic.Sink) (*mapping.Set, error) {
	fi := slices.Index(t.namespaces, from)
	if fi < 0 {
		return nil, fmt.Errorf("%w %q (have %s)", ErrNamespace, from, strings.Join(t.namespaces, ", "))
	}

	ti := slices.Index(t.namespaces, to)
	if ti < 0 {
		return nil, fmt.Errorf("%w %q (have %s)", ErrNamespace, to, strings.Join(t.namespaces, ", "))
	}

	// first namespace -> from, for owners and descriptors
	toFrom := make(map[string]string, len(t.classes))
	for _, names := range t.classes {
		toFrom[names[0]] = pick(names, fi, 0)
	}

	mapFirst := func(name string) string {
		if v, ok := toFrom[name]; ok {
			return v
		}

		return name
	}

	set := mapping.NewSet(sink)

	for _, names := range t.classes {
		src := pick(names, fi, 0)
		id := set.GetOrCreateClass(src)
		set.SetDeobfName(id, pick(names, ti, fi))
	}

	for _, m := range t.members {
		id := set.GetOrCreateClass(mapFirst(m.owner))
		name := pick(m.name, fi, 0)
		desc := jvmtype.RemapDescriptor(m.desc, mapFirst)

		if !m.method {
			set.AddField(id, mapping.FieldSignature{Name: name, Type: desc}, pick(m.name, ti, fi))
			continue
		}

		mm := set.AddMethod(id, mapping.MethodSignature{Name: name, Desc: desc}, pick(m.name, ti, fi))
		for _, p := range m.params {
			if pn := p.name[ti]; pn != "" {
				set.AddParameter(mm, p.index, pn)
			}
		}
	}

	return set, nil
}

// pick returns names[i], or names[fallback] when the column is empty.
func pick(names []string, i, fallback int) string {
	if names[i] != "" {
		return names[i]
	}

	return names[fallback]
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}

		i++

		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '0':
			sb.WriteByte(0)
		default:
			sb.WriteByte(s[i])
		}
	}

	return sb.String()
}
