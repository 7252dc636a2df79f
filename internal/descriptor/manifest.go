package descriptor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ManifestEntry is the jar manifest.
const ManifestEntry = "META-INF/MANIFEST.MF"

// manifestWidth is the maximum line length in bytes, continuation lines
// included.
const manifestWidth = 72

// timestampLayout formats Implementation-Timestamp.
const timestampLayout = "2006-01-02T15:04:05-0700"

// ErrManifest reports a malformed manifest.
var ErrManifest = errors.New("malformed manifest")

// Attribute is a manifest header.
type Attribute struct {
	Name  string
	Value string
}

// Manifest is a jar manifest. Main holds the main section in order;
// per-entry sections are kept verbatim.
type Manifest struct {
	Main     []Attribute
	Sections []byte
}

// ParseManifest decodes a manifest. Continuation lines are joined.
func ParseManifest(data []byte) (*Manifest, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	m := &Manifest{}

	main, rest, found := strings.Cut(text, "\n\n")
	if found && strings.TrimSpace(rest) != "" {
		m.Sections = []byte(rest)
	}

	for i, line := range strings.Split(main, "\n") {
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, " "):
			if len(m.Main) == 0 {
				return nil, fmt.Errorf("%w: continuation on line %d", ErrManifest, i+1)
			}

			m.Main[len(m.Main)-1].Value += line[1:]
		default:
			name, value, ok := strings.Cut(line, ": ")
			if !ok {
				return nil, fmt.Errorf("%w: line %d %q", ErrManifest, i+1, line)
			}

			m.Main = append(m.Main, Attribute{Name: name, Value: value})
		}
	}

	return m, nil
}

// Get returns the value of a main attribute.
func (m *Manifest) Get(name string) (string, bool) {
	for _, a := range m.Main {
		if strings.EqualFold(a.Name, name) {
			return a.Value, true
		}
	}

	return "", false
}

// Set replaces or appends a main attribute.
func (m *Manifest) Set(name, value string) {
	for i := range m.Main {
		if strings.EqualFold(m.Main[i].Name, name) {
			m.Main[i].Value = value
			return
		}
	}

	m.Main = append(m.Main, Attribute{Name: name, Value: value})
}

// Apply sets the specification and implementation attributes from mod.
func (m *Manifest) Apply(mod *Mod, now time.Time) {
	if _, ok := m.Get("Manifest-Version"); !ok {
		m.Main = append([]Attribute{{Name: "Manifest-Version", Value: "1.0"}}, m.Main...)
	}

	m.Set("Specification-Title", mod.ID)
	m.Set("Specification-Vendor", mod.FirstAuthor())
	m.Set("Specification-Version", "1")
	m.Set("Implementation-Title", mod.Name)
	m.Set("Implementation-Vendor", mod.FirstAuthor())
	m.Set("Implementation-Version", mod.Version)
	m.Set("Implementation-Timestamp", now.Format(timestampLayout))

	if mixin := mod.FirstMixin(); mixin != "" {
		m.Set("MixinConfigs", mixin)
	}
}

// Encode renders the manifest with CRLF line ends and wrapped lines.
func (m *Manifest) Encode() []byte {
	var buf bytes.Buffer

	for _, a := range m.Main {
		writeWrapped(&buf, a.Name+": "+a.Value)
	}

	buf.WriteString("\r\n")

	if len(m.Sections) > 0 {
		buf.WriteString(strings.ReplaceAll(strings.ReplaceAll(string(m.Sections), "\r\n", "\n"), "\n", "\r\n"))
	}

	return buf.Bytes()
}

func writeWrapped(buf *bytes.Buffer, line string) {
	width := manifestWidth

	for len(line) > width {
		cut := width
		// keep multi-byte characters whole
		for cut > 0 && line[cut]&0xC0 == 0x80 {
			cut--
		}

		buf.WriteString(line[:cut])
		buf.WriteString("\r\n ")

		line = line[cut:]
		width = manifestWidth - 1
	}

	buf.WriteString(line)
	buf.WriteString("\r\n")
}
