package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"forgery/internal/descriptor"
	"forgery/internal/jar"
	"forgery/internal/mapping"
	"forgery/internal/resolve"
	"forgery/internal/rewrite"
	"forgery/internal/sidecar"
)

// transform rewrites every entry of the input module into a new module.
// Entries no transformer claims are copied unchanged.
func (st *run) transform(remapper *resolve.Remapper, reverse *mapping.Set) (*jar.Module, error) {
	rw := rewrite.New(rewriterConfig(st.cfg, st.mod), remapper, reverse, st.sink)
	refmap := sidecar.NewRefmap(remapper, st.cfg.RefmapNamespace, st.sink)
	widener := sidecar.NewAccessWidener(remapper)

	out := jar.New()
	out.Now = st.Now

	for _, e := range st.module.Entries() {
		switch {
		case e.Dir:
			out.Add(e)
		case e.IsClass():
			data, changed := rw.Rewrite(e.Name, e.Data)
			name := e.Name

			if changed {
				name = remapper.Class(e.ClassName()) + ".class"
				st.result.Rewritten++
			}

			out.Add(&jar.Entry{Name: name, Data: data, ModTime: e.ModTime})
		case e.Name == descriptor.FabricEntry:
			toml, err := descriptor.NewModsTOML(st.mod, descriptor.LoaderOptions{
				ModLoader:     st.cfg.Loader.ModLoader,
				LoaderVersion: st.cfg.Loader.LoaderVersion,
			}).Encode()
			if err != nil {
				return nil, err
			}

			out.Add(&jar.Entry{Name: descriptor.ModsTOMLEntry, Data: toml, ModTime: e.ModTime})
			st.result.Sidecars++
		case st.refmap != "" && e.Name == st.refmap:
			data, err := refmap.Rewrite(e.Name, e.Data)
			if err != nil {
				return nil, err
			}

			out.Add(&jar.Entry{Name: e.Name, Data: data, ModTime: e.ModTime})
			st.result.Sidecars++
		case sidecar.IsAccessWidener(e.Name):
			data, err := widener.Convert(e.Name, e.Data)
			if err != nil {
				return nil, err
			}

			out.Add(&jar.Entry{Name: sidecar.AccessTransformerEntry, Data: data, ModTime: e.ModTime})
			st.result.Sidecars++
		case strings.EqualFold(e.Name, descriptor.ManifestEntry):
			data, err := st.manifest(e.Data)
			if err != nil {
				return nil, err
			}

			out.Add(&jar.Entry{Name: descriptor.ManifestEntry, Data: data, ModTime: e.ModTime})
		default:
			out.Add(e)
		}
	}

	if _, ok := out.Entry(descriptor.ManifestEntry); !ok {
		data, err := st.manifest(nil)
		if err != nil {
			return nil, err
		}

		out.Prepend(&jar.Entry{Name: descriptor.ManifestEntry, Data: data, ModTime: st.Now()})
	}

	st.sink.Logger().Debug("module transformed",
		zap.Int("entries", out.Len()),
		zap.Int("classes_rewritten", st.result.Rewritten))

	return out, nil
}

// manifest fills in the loader attributes of data, an existing manifest
// or nil.
func (st *run) manifest(data []byte) ([]byte, error) {
	m := &descriptor.Manifest{}

	if data != nil {
		var err error

		m, err = descriptor.ParseManifest(data)
		if err != nil {
			return nil, err
		}
	}

	m.Apply(st.mod, st.Now())

	return m.Encode(), nil
}

// overlay copies the runtime helper classes into out and removes the
// classes the target loader must not see.
func (st *run) overlay(ctx context.Context, out *jar.Module) error {
	runtime, err := jar.Open(ctx, st.in.Runtime)
	if err != nil {
		return err
	}

	for _, e := range runtime.Entries() {
		if st.skipRuntime(e.Name) {
			continue
		}

		if e.Dir {
			if _, ok := out.Entry(e.Name); !ok {
				out.Add(e)
			}

			continue
		}

		out.Add(e)
		st.result.Overlaid++
	}

	for _, name := range st.cfg.Runtime.Remove {
		if out.Remove(name) {
			st.result.Removed++
		}
	}

	return nil
}

func (st *run) skipRuntime(name string) bool {
	for _, p := range st.cfg.Runtime.SkipPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}

	for _, s := range st.cfg.Runtime.SkipSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}

	return false
}
