package pipeline

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"go.uber.org/zap"

	"forgery/internal/classpath"
	"forgery/internal/config"
	"forgery/internal/descriptor"
	"forgery/internal/diagnostic"
	"forgery/internal/jar"
	"forgery/internal/mapio"
	"forgery/internal/mapping"
	"forgery/internal/resolve"
	"forgery/internal/rewrite"
)

// Inputs names the files of one run, in command-line order.
type Inputs struct {
	Module       string   // input mod jar
	Output       string   // output jar, replaced atomically
	Intermediary string   // tiny table, official -> intermediary
	Target       string   // tsrg table, official -> srg
	Runtime      string   // runtime helper jar
	Classpath    []string // jars in the intermediary domain, usually Minecraft
	Package      string   // runtime helper package, dotted or slashed
}

// MissingInputError reports a module entry the run cannot do without.
type MissingInputError struct {
	Module string
	Entry  string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s: missing %s, not a Fabric mod", e.Module, e.Entry)
}

// Result summarises a successful run.
type Result struct {
	Entries   int
	Rewritten int
	Sidecars  int
	Overlaid  int
	Removed   int
}

// Runner converts modules with one configuration.
type Runner struct {
	cfg  *config.Config
	sink *diagnostic.Sink

	// DumpMappings receives the composite table as TSRG when set.
	DumpMappings io.Writer
	// Now stamps the manifest; defaults to time.Now.
	Now func() time.Time
}

// NewRunner creates a runner. A nil cfg uses config.Default.
func NewRunner(cfg *config.Config, sink *diagnostic.Sink) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}

	return &Runner{cfg: cfg, sink: sink, Now: time.Now}
}

// Sink returns the diagnostics sink of the runner.
func (r *Runner) Sink() *diagnostic.Sink {
	return r.sink
}

// run carries the state of one Run call.
type run struct {
	*Runner
	in     Inputs
	cfg    *config.Config
	module *jar.Module
	mod    *descriptor.Mod
	refmap string
	result Result
}

// Run performs the conversion. Nothing is written unless every step
// succeeds.
func (r *Runner) Run(ctx context.Context, in Inputs) (*Result, error) {
	cfg := r.cfg.Expand(in.Package)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st := &run{Runner: r, in: in, cfg: cfg}

	if err := st.load(ctx); err != nil {
		return nil, err
	}

	r.sink.Progress("building mappings")

	forward, err := st.mappings()
	if err != nil {
		return nil, err
	}

	reverse := forward.Reverse()
	st.synthetic(forward)

	r.sink.Progress("remapping", zap.Int("classes", forward.Len()))

	cp, err := classpath.Open(ctx, cfg.CacheSize, r.sink, []*jar.Module{st.module}, st.classpath()...)
	if err != nil {
		return nil, err
	}

	reverse.CompleteAll(cp)

	out, err := st.transform(resolve.NewRemapper(forward, cp, r.sink), reverse)
	if err != nil {
		return nil, err
	}

	r.sink.Progress("adding runtime")

	if err := st.overlay(ctx, out); err != nil {
		return nil, err
	}

	if err := jar.Write(ctx, in.Output, out); err != nil {
		return nil, err
	}

	st.result.Entries = out.Len()
	st.summarize()

	return &st.result, nil
}

func (st *run) classpath() []string {
	return append(slices.Clone(st.in.Classpath), st.cfg.Classpath...)
}

// load opens the input module and reads the descriptors the run depends on.
func (st *run) load(ctx context.Context) error {
	module, err := jar.Open(ctx, st.in.Module)
	if err != nil {
		return err
	}

	st.module = module

	e, ok := module.Entry(descriptor.FabricEntry)
	if !ok {
		return &MissingInputError{Module: st.in.Module, Entry: descriptor.FabricEntry}
	}

	st.mod, err = descriptor.ParseMod(e.Data)
	if err != nil {
		return err
	}

	name := st.mod.FirstMixin()
	if name == "" {
		return nil
	}

	e, ok = module.Entry(name)
	if !ok {
		return &MissingInputError{Module: st.in.Module, Entry: name}
	}

	mixins, err := descriptor.ParseMixinConfig(name, e.Data)
	if err != nil {
		return err
	}

	st.refmap = mixins.Refmap

	return nil
}

// mappings builds the intermediary -> srg table.
func (st *run) mappings() (*mapping.Set, error) {
	var official *mapping.Set

	err := readFile(st.in.Intermediary, func(f io.Reader) (err error) {
		official, err = mapio.ReadTiny(f, st.cfg.Namespaces.From, st.cfg.Namespaces.To, st.sink)
		return err
	})
	if err != nil {
		return nil, err
	}

	var target *mapping.Set

	err = readFile(st.in.Target, func(f io.Reader) (err error) {
		target, err = mapio.ReadTSRG(f, st.sink)
		return err
	})
	if err != nil {
		return nil, err
	}

	forward := mapping.Merge(official.Reverse(), target, mapping.MergeConfig{
		Fields:  mapping.Loose,
		Methods: mapping.Loose,
	})

	if st.DumpMappings != nil {
		if err := mapio.WriteTSRG(st.DumpMappings, forward); err != nil {
			return nil, fmt.Errorf("dumping mappings: %w", err)
		}
	}

	return forward, nil
}

// synthetic adds the configured loader-API mappings. They are added after
// the reverse table is taken, so they never become injector targets.
func (st *run) synthetic(set *mapping.Set) {
	for _, s := range st.cfg.Synthetic {
		id := set.GetOrCreateClass(s.Obf)
		set.SetDeobfName(id, s.Deobf)

		for _, name := range slices.Sorted(maps.Keys(s.Fields)) {
			set.AddField(id, mapping.FieldSignature{Name: name}, s.Fields[name])
		}
	}
}

func readFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open mapping file %s: %w", path, err)
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return nil
}

func (st *run) summarize() {
	diags := st.sink.Diagnostics()

	st.sink.Progress("done",
		zap.String("output", st.in.Output),
		zap.Int("entries", st.result.Entries),
		zap.Int("rewritten", st.result.Rewritten),
		zap.Int("sidecars", st.result.Sidecars),
		zap.Int("overlaid", st.result.Overlaid),
		zap.Int("errors", len(diags.Errors)),
		zap.Int("warnings", len(diags.Warnings)),
		zap.Int("infos", len(diags.Infos)),
	)
}

func rewriterConfig(cfg *config.Config, mod *descriptor.Mod) rewrite.Config {
	return rewrite.Config{
		EntryPoint: rewrite.EntryPoint{
			Interface: cfg.EntryPoint.Interface,
			Base:      cfg.EntryPoint.Base,
			Marker:    cfg.EntryPoint.Marker,
			Caller:    mod.ID,
		},
		Dispatch: rewrite.Dispatch{
			Class: cfg.Dispatch.Class,
			From:  cfg.Dispatch.From,
			To:    cfg.Dispatch.To,
		},
		Hoist:    cfg.Hoist,
		Injector: cfg.Injector,
		Disabled: cfg.Passes(),
	}
}
