package rewrite

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"forgery/internal/classfile"
	"forgery/internal/diagnostic"
	"forgery/internal/mapping"
	"forgery/internal/resolve"
)

// EntryPoint configures PassEntryPoint. All names are in the target
// naming domain.
type EntryPoint struct {
	Interface string // internal name of the entry-point interface
	Base      string // internal name of the replacement superclass
	Marker    string // descriptor of the marker annotation
	Caller    string // value of the marker annotation
}

// Dispatch configures PassDispatch.
type Dispatch struct {
	Class string // internal name of the dispatch class
	From  string
	To    string
}

// Config selects what the structural passes act on. Empty sections
// disable their pass.
type Config struct {
	EntryPoint EntryPoint
	Dispatch   Dispatch
	// Hoist lists annotation descriptors moved to the visible list.
	Hoist []string
	// Injector is the descriptor of the injector-marker annotation.
	Injector string
	// Disabled passes are skipped.
	Disabled []Pass
}

// Rewriter rewrites classes of one module.
type Rewriter struct {
	cfg      Config
	remapper *resolve.Remapper
	reverse  *mapping.Set
	sink     *diagnostic.Sink
	passes   []Pass
}

// New creates a rewriter. remapper holds the composite mapping; reverse
// is its inverse, used to find injector targets by target-domain name.
func New(cfg Config, remapper *resolve.Remapper, reverse *mapping.Set, sink *diagnostic.Sink) *Rewriter {
	passes := make([]Pass, 0, len(Passes))
	for _, p := range Passes {
		if !slices.Contains(cfg.Disabled, p) {
			passes = append(passes, p)
		}
	}

	return &Rewriter{cfg: cfg, remapper: remapper, reverse: reverse, sink: sink, passes: passes}
}

// Rewrite transforms the class stored in entry. It returns the bytes to
// store and whether they differ from data. Failures keep data and are
// reported as diagnostics.
func (r *Rewriter) Rewrite(entry string, data []byte) ([]byte, bool) {
	cls, err := classfile.Parse(data)
	if err != nil {
		r.failed(entry, "", fmt.Errorf("decoding: %w", err))
		return data, false
	}

	if cls.Access&classfile.AccModule != 0 {
		return data, false
	}

	changed, err := r.Apply(cls)
	if err != nil {
		r.failed(entry, cls.Name, err)
		return data, false
	}

	if !changed {
		return data, false
	}

	out, err := classfile.Encode(cls)
	if err != nil {
		if errors.Is(err, classfile.ErrOpaque) {
			r.sink.Warn(diagnostic.CodeRewriteFailed, "kept original bytes: "+err.Error(), entry, cls.Name)
			return data, false
		}

		r.failed(entry, cls.Name, fmt.Errorf("encoding: %w", err))

		return data, false
	}

	return out, true
}

// Apply runs the passes on cls in place.
func (r *Rewriter) Apply(cls *classfile.Class) (bool, error) {
	changed := false

	for _, p := range r.passes {
		ok, err := r.run(p, cls)
		if err != nil {
			return false, fmt.Errorf("pass %s: %w", p, err)
		}

		if ok {
			r.sink.Logger().Debug("pass changed class", zap.Stringer("pass", p), zap.String("class", cls.Name))
		}

		changed = changed || ok
	}

	return changed, nil
}

func (r *Rewriter) run(p Pass, cls *classfile.Class) (bool, error) {
	switch p {
	case PassSubstitute:
		return r.substitute(cls), nil
	case PassEntryPoint:
		return r.entryPoint(cls), nil
	case PassDispatch:
		return r.dispatch(cls), nil
	case PassHoist:
		return r.hoist(cls), nil
	case PassPropagate:
		return r.propagate(cls), nil
	default:
		return false, fmt.Errorf("unknown pass %d", int(p))
	}
}

func (r *Rewriter) failed(entry, class string, err error) {
	r.sink.Error(diagnostic.CodeRewriteFailed, "kept original bytes: "+err.Error(), entry, class)
}

// edit tracks whether any assignment changed a value.
type edit struct {
	changed bool
}

func (e *edit) set(dst *string, v string) {
	if *dst != v {
		*dst = v
		e.changed = true
	}
}
