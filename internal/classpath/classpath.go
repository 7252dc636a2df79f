// Package classpath provides class headers for inheritance queries.
package classpath

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"forgery/internal/classfile"
	"forgery/internal/diagnostic"
	"forgery/internal/jar"
	"forgery/internal/mapping"
)

// DefaultCacheSize bounds the number of parsed headers kept in memory.
const DefaultCacheSize = 1024

// Source yields raw class bytes by internal name.
type Source interface {
	Class(name string) ([]byte, bool)
}

// Classpath is a mapping.InheritanceProvider over an ordered list of
// sources. The first source holding a class wins.
type Classpath struct {
	sources []Source
	found   *lru.Cache[string, *mapping.ClassInfo]
	missing *lru.Cache[string, struct{}]
	sink    *diagnostic.Sink
}

var _ mapping.InheritanceProvider = (*Classpath)(nil)

// New creates a classpath over sources with a header cache of size
// entries. A size of zero selects DefaultCacheSize.
func New(size int, sink *diagnostic.Sink, sources ...Source) (*Classpath, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	found, err := lru.New[string, *mapping.ClassInfo](size)
	if err != nil {
		return nil, fmt.Errorf("creating header cache: %w", err)
	}

	missing, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("creating miss cache: %w", err)
	}

	return &Classpath{sources: sources, found: found, missing: missing, sink: sink}, nil
}

// Open loads the jars at paths and builds a classpath over them,
// preceded by the given in-memory modules.
func Open(ctx context.Context, size int, sink *diagnostic.Sink, modules []*jar.Module, paths ...string) (*Classpath, error) {
	sources := make([]Source, 0, len(modules)+len(paths))
	for _, m := range modules {
		sources = append(sources, m)
	}

	for _, path := range paths {
		m, err := jar.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("loading classpath: %w", err)
		}

		sink.Progress("classpath entry loaded", zap.String("path", path), zap.Int("entries", m.Len()))
		sources = append(sources, m)
	}

	return New(size, sink, sources...)
}

// Add appends a source. Cached misses are forgotten.
func (c *Classpath) Add(src Source) {
	c.sources = append(c.sources, src)
	c.missing.Purge()
}

// ClassInfo implements mapping.InheritanceProvider.
func (c *Classpath) ClassInfo(name string) (*mapping.ClassInfo, bool) {
	if ci, ok := c.found.Get(name); ok {
		return ci, true
	}

	if c.missing.Contains(name) {
		return nil, false
	}

	for _, src := range c.sources {
		data, ok := src.Class(name)
		if !ok {
			continue
		}

		cls, err := classfile.ParseHeader(data)
		if err != nil {
			c.sink.Warn(diagnostic.CodeLookupMiss, "unreadable class header: "+err.Error(), name+".class", name)
			continue
		}

		ci := Info(cls)
		c.found.Add(name, ci)

		return ci, true
	}

	c.missing.Add(name, struct{}{})

	return nil, false
}

// Info converts a decoded class header.
func Info(cls *classfile.Class) *mapping.ClassInfo {
	ci := &mapping.ClassInfo{
		Name:       cls.Name,
		Super:      cls.Super,
		Interfaces: append([]string(nil), cls.Interfaces...),
		Access:     cls.Access,
		Fields:     make([]mapping.MemberInfo, 0, len(cls.Fields)),
		Methods:    make([]mapping.MemberInfo, 0, len(cls.Methods)),
	}

	for _, f := range cls.Fields {
		ci.Fields = append(ci.Fields, mapping.MemberInfo{Name: f.Name, Desc: f.Desc, Access: f.Access})
	}

	for _, m := range cls.Methods {
		ci.Methods = append(ci.Methods, mapping.MemberInfo{Name: m.Name, Desc: m.Desc, Access: m.Access})
	}

	return ci
}
