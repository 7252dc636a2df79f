package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"forgery/internal/rewrite"
)

// ErrInvalid marks configuration problems.
var ErrInvalid = errors.New("invalid config")

// Validate reports every problem of cfg at once. The returned error is a
// *multierror.Error whose entries wrap ErrInvalid.
func (cfg *Config) Validate() error {
	var result *multierror.Error

	bad := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
	}

	if cfg.Namespaces.From == "" || cfg.Namespaces.To == "" {
		bad("namespaces.from and namespaces.to are required")
	} else if cfg.Namespaces.From == cfg.Namespaces.To {
		bad("namespaces.from and namespaces.to are both %q", cfg.Namespaces.From)
	}

	if !isDescriptor(cfg.EntryPoint.Marker) {
		bad("entrypoint.marker %q is not an object descriptor", cfg.EntryPoint.Marker)
	}

	if isDescriptor(cfg.EntryPoint.Interface) || isDescriptor(cfg.EntryPoint.Base) {
		bad("entrypoint.interface and entrypoint.base take internal names, not descriptors")
	}

	if cfg.Dispatch.Class != "" && (cfg.Dispatch.From == "" || cfg.Dispatch.To == "") {
		bad("dispatch.from and dispatch.to are required with dispatch.class")
	}

	if !isDescriptor(cfg.Injector) {
		bad("injector %q is not an object descriptor", cfg.Injector)
	}

	for i, h := range cfg.Hoist {
		if !isDescriptor(h) {
			bad("hoist[%d] %q is not an object descriptor", i, h)
		}
	}

	for _, name := range cfg.DisablePasses {
		if _, err := rewrite.ParsePass(name); err != nil {
			bad("disable_passes: %v", err)
		}
	}

	for i, s := range cfg.Synthetic {
		if s.Obf == "" || s.Deobf == "" {
			bad("synthetic[%d] needs obf and deobf", i)
		}
	}

	if cfg.CacheSize < 0 {
		bad("cache_size must not be negative, got %d", cfg.CacheSize)
	}

	return result.ErrorOrNil()
}

// Passes returns the disabled passes. Validate has checked the names.
func (cfg *Config) Passes() []rewrite.Pass {
	var out []rewrite.Pass

	for _, name := range cfg.DisablePasses {
		if p, err := rewrite.ParsePass(name); err == nil {
			out = append(out, p)
		}
	}

	return out
}

func isDescriptor(s string) bool {
	return len(s) > 2 && strings.HasPrefix(s, "L") && strings.HasSuffix(s, ";")
}
