package jar

import (
	"strings"
	"time"
)

// Entry is one archive member.
type Entry struct {
	Name    string
	Data    []byte
	ModTime time.Time
	Dir     bool
}

// IsClass reports whether the entry is a compiled class.
func (e *Entry) IsClass() bool {
	return !e.Dir && strings.HasSuffix(e.Name, ".class")
}

// ClassName returns the internal class name of a class entry.
func (e *Entry) ClassName() string {
	return strings.TrimSuffix(e.Name, ".class")
}

// Module is an ordered set of entries addressed by name.
type Module struct {
	entries []*Entry
	index   map[string]int
	// Now stamps entries added by Put; tests replace it.
	Now func() time.Time
}

// New creates an empty module.
func New() *Module {
	return &Module{index: make(map[string]int), Now: time.Now}
}

// Entries returns the entries in archive order.
func (m *Module) Entries() []*Entry {
	return m.entries
}

// Len returns the number of entries.
func (m *Module) Len() int {
	return len(m.entries)
}

// Entry returns the entry called name.
func (m *Module) Entry(name string) (*Entry, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}

	return m.entries[i], true
}

// Class returns the bytes of class name (internal form).
func (m *Module) Class(name string) ([]byte, bool) {
	e, ok := m.Entry(name + ".class")
	if !ok || e.Dir {
		return nil, false
	}

	return e.Data, true
}

// Add appends e, replacing an entry of the same name in place.
func (m *Module) Add(e *Entry) {
	if i, ok := m.index[e.Name]; ok {
		m.entries[i] = e
		return
	}

	m.index[e.Name] = len(m.entries)
	m.entries = append(m.entries, e)
}

// Prepend stores e as the first entry, moving an entry of the same name.
func (m *Module) Prepend(e *Entry) {
	m.Remove(e.Name)

	m.entries = append([]*Entry{e}, m.entries...)
	for i, x := range m.entries {
		m.index[x.Name] = i
	}
}

// Put stores data under name. An existing entry keeps its position and
// modification time.
func (m *Module) Put(name string, data []byte) {
	if e, ok := m.Entry(name); ok {
		e.Data = data
		return
	}

	m.Add(&Entry{Name: name, Data: data, ModTime: m.Now()})
}

// Remove deletes the entry called name.
func (m *Module) Remove(name string) bool {
	i, ok := m.index[name]
	if !ok {
		return false
	}

	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	delete(m.index, name)

	for j := i; j < len(m.entries); j++ {
		m.index[m.entries[j].Name] = j
	}

	return true
}
