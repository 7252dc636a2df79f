package mapio

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"forgery/internal/diagnostic"
	"forgery/internal/mapping"
)

// ExtID is the extension key holding the tsrg2 "id" column.
const ExtID = "tsrg2:id"

const tsrg2Header = "tsrg2 obf srg id"

// ReadTSRG reads a TSRG2 table. A stream whose first line is not exactly
// the tsrg2 header is read as TSRG v1, header line included.
func ReadTSRG(r io.Reader, sink *diagnostic.Sink) (*mapping.Set, error) {
	p := &tsrgParser{set: mapping.NewSet(sink), class: mapping.NoClass}

	err := eachLine(r, func(lineNo int, raw string) error {
		if lineNo == 1 {
			if strings.TrimRight(raw, " \t") == tsrg2Header {
				return nil
			}

			p.v1 = true
		}

		if p.v1 {
			return p.v1Line(lineNo, raw)
		}

		return p.v2Line(lineNo, raw)
	})
	if err != nil {
		return nil, err
	}

	return p.set, nil
}

// ReadTSRGv1 reads a TSRG v1 table.
func ReadTSRGv1(r io.Reader, sink *diagnostic.Sink) (*mapping.Set, error) {
	p := &tsrgParser{set: mapping.NewSet(sink), class: mapping.NoClass, v1: true}

	if err := eachLine(r, p.v1Line); err != nil {
		return nil, err
	}

	return p.set, nil
}

type tsrgParser struct {
	set    *mapping.Set
	v1     bool
	class  mapping.ClassID
	method *mapping.MethodMapping
}

func (p *tsrgParser) v2Line(lineNo int, raw string) error {
	line := stripComment(raw)
	if strings.TrimSpace(line) == "" {
		return nil
	}

	d := depth(line)
	tokens := strings.Split(line[d:], " ")

	switch {
	case d == 0:
		if len(tokens) != 3 {
			return parseErr(lineNo, raw, "class record needs 3 tokens, got %d", len(tokens))
		}

		p.method = nil
		p.class = p.set.GetOrCreateClass(tokens[0])
		p.set.SetDeobfName(p.class, tokens[1])
		p.set.SetExtension(p.class, ExtID, tokens[2])
	case d == 1 && p.class != mapping.NoClass:
		switch len(tokens) {
		case 3:
			p.method = nil
			f := p.set.AddField(p.class, mapping.FieldSignature{Name: tokens[0]}, tokens[1])
			setExt(&f.Extensions, tokens[2])
		case 4:
			p.method = p.set.AddMethod(p.class, mapping.MethodSignature{Name: tokens[0], Desc: tokens[1]}, tokens[2])
			setExt(&p.method.Extensions, tokens[3])
		default:
			return parseErr(lineNo, raw, "member record needs 3 or 4 tokens, got %d", len(tokens))
		}
	case d == 2 && p.method != nil:
		switch len(tokens) {
		case 1:
			// modifier such as "static"
		case 4:
			idx, err := strconv.Atoi(tokens[0])
			if err != nil {
				return &diagnostic.ParseError{Line: lineNo, Text: raw, Err: fmt.Errorf("parameter index: %w", err)}
			}

			p.set.AddParameter(p.method, idx, tokens[2])
			p.set.SetParameterExtension(p.method, idx, ExtID, tokens[3])
		default:
			return parseErr(lineNo, raw, "parameter record needs 4 tokens, got %d", len(tokens))
		}
	default:
		return parseErr(lineNo, raw, "unexpected record at depth %d", d)
	}

	return nil
}

func (p *tsrgParser) v1Line(lineNo int, raw string) error {
	line := stripComment(raw)
	if strings.TrimSpace(line) == "" {
		return nil
	}

	d := depth(line)
	tokens := strings.Split(line[d:], " ")

	switch {
	case d == 0:
		if len(tokens) != 2 {
			return parseErr(lineNo, raw, "class record needs 2 tokens, got %d", len(tokens))
		}

		p.method = nil
		if strings.HasSuffix(tokens[0], "/") {
			// package rename
			p.class = mapping.NoClass
			return nil
		}

		p.class = p.set.GetOrCreateClass(tokens[0])
		p.set.SetDeobfName(p.class, tokens[1])
	case d == 1 && p.class != mapping.NoClass:
		switch len(tokens) {
		case 2:
			p.set.AddField(p.class, mapping.FieldSignature{Name: tokens[0]}, tokens[1])
		case 3:
			p.set.AddMethod(p.class, mapping.MethodSignature{Name: tokens[0], Desc: tokens[1]}, tokens[2])
		default:
			return parseErr(lineNo, raw, "member record needs 2 or 3 tokens, got %d", len(tokens))
		}
	case d == 1:
		// members of a package record
	default:
		return parseErr(lineNo, raw, "unexpected record at depth %d", d)
	}

	return nil
}

func setExt(m *map[string]string, id string) {
	if *m == nil {
		*m = make(map[string]string, 1)
	}

	(*m)[ExtID] = id
}

// WriteTSRG writes set as TSRG v1, classes in insertion order with inner
// classes after their outer class.
func WriteTSRG(w io.Writer, set *mapping.Set) error {
	var err error

	write := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	set.Walk(func(id mapping.ClassID) bool {
		write("%s %s\n", set.FullObfName(id), set.FullDeobfName(id))

		c := set.Get(id)
		for _, f := range c.Fields() {
			write("\t%s %s\n", f.Obf.Name, f.Deobf)
		}

		for _, m := range c.Methods() {
			write("\t%s %s %s\n", m.Obf.Name, m.Obf.Desc, m.Deobf)
		}

		return err == nil
	})

	return err
}
