package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"forgery/internal/classfile"
	"forgery/internal/config"
	"forgery/internal/descriptor"
	"forgery/internal/diagnostic"
	"forgery/internal/jar"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	tinyTable = "tiny\t2\t0\tofficial\tintermediary\n" +
		"c\ta\tnet/minecraft/class_1\n" +
		"\tf\tI\tb\tfield_1\n" +
		"\tm\t()V\tc\tmethod_1\n"

	tsrgTable = "a net/minecraft/Target\n" +
		"\tb power\n" +
		"\tc ()V tick\n"

	fabricMod = `{
  "schemaVersion": 1,
  "id": "example",
  "version": "1.2.0",
  "name": "Example Mod",
  "authors": ["Someone", {"name": "Other"}],
  "license": "MIT",
  "mixins": ["example.mixins.json"]
}`

	refmapJSON = `{
  "mappings": {
    "mod/mixin/UserMixin": {
      "power": "Lnet/minecraft/class_1;field_1:I"
    }
  }
}`

	widener = "accessWidener\tv1\tintermediary\n" +
		"accessible\tfield\tnet/minecraft/class_1\tfield_1\tI\n"

	pkg = "mod.rt"
)

var fixed = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type files struct {
	dir     string
	inputs  Inputs
	entries []*jar.Entry
}

func body(insns ...func(c *asm)) *classfile.CodeAttribute {
	c := &asm{}
	for _, f := range insns {
		f(c)
	}

	c.b = append(c.b, 0xb1)

	return &classfile.CodeAttribute{MaxStack: 2, MaxLocals: 1, Code: c.b, Insns: c.insns}
}

// asm collects a method body with constant-pool operands.
type asm struct {
	b     []byte
	insns []classfile.Insn
}

func ref(op byte, k classfile.Constant) func(c *asm) {
	return func(c *asm) {
		c.insns = append(c.insns, classfile.Insn{Offset: len(c.b), Op: op, Const: k, Width: 2})
		c.b = append(c.b, op, 0, 0)
	}
}

func raw(b ...byte) func(c *asm) {
	return func(c *asm) { c.b = append(c.b, b...) }
}

func class(t *testing.T, cls *classfile.Class) []byte {
	t.Helper()

	data, err := classfile.Encode(cls)
	require.NoError(t, err)

	return data
}

func ctor(super string) *classfile.Member {
	return &classfile.Member{
		Access: classfile.AccPublic, Name: "<init>", Desc: "()V",
		Attributes: []classfile.Attribute{body(
			raw(0x2a),
			ref(classfile.OpInvokeSpecial, classfile.MethodRef(super, "<init>", "()V")),
		)},
	}
}

func writeJar(t *testing.T, path string, entries ...*jar.Entry) {
	t.Helper()

	m := jar.New()
	for _, e := range entries {
		if e.ModTime.IsZero() {
			e.ModTime = fixed
		}

		m.Add(e)
	}

	require.NoError(t, jar.Write(context.Background(), path, m))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fixture(t *testing.T) *files {
	t.Helper()

	dir := t.TempDir()
	f := &files{
		dir: dir,
		inputs: Inputs{
			Module:       filepath.Join(dir, "in.jar"),
			Output:       filepath.Join(dir, "out", "out.jar"),
			Intermediary: filepath.Join(dir, "intermediary.tiny"),
			Target:       filepath.Join(dir, "joined.tsrg"),
			Runtime:      filepath.Join(dir, "runtime.jar"),
			Package:      pkg,
		},
	}

	writeFile(t, f.inputs.Intermediary, tinyTable)
	writeFile(t, f.inputs.Target, tsrgTable)

	main := class(t, &classfile.Class{
		Major: 61, Access: classfile.AccPublic | classfile.AccSuper,
		Name: "mod/Main", Super: "java/lang/Object",
		Interfaces: []string{"net/fabricmc/api/ModInitializer"},
		Methods: []*classfile.Member{
			ctor("java/lang/Object"),
			{Access: classfile.AccPublic, Name: "onInitialize", Desc: "()V", Attributes: []classfile.Attribute{body()}},
		},
	})

	user := class(t, &classfile.Class{
		Major: 61, Access: classfile.AccPublic | classfile.AccSuper,
		Name: "mod/User", Super: "java/lang/Object",
		Methods: []*classfile.Member{
			ctor("java/lang/Object"),
			{Access: classfile.AccPublic | classfile.AccStatic, Name: "run", Desc: "()V", Attributes: []classfile.Attribute{body(
				ref(classfile.OpGetStatic, classfile.FieldRef("net/minecraft/class_1", "field_1", "I")),
				raw(0x57),
				ref(classfile.OpInvokeStatic, classfile.MethodRef("net/minecraft/class_1", "method_1", "()V")),
			)}},
		},
	})

	f.entries = []*jar.Entry{
		{Name: descriptor.ManifestEntry, Data: []byte("Manifest-Version: 1.0\r\nCreated-By: test\r\n\r\n")},
		{Name: "mod/", Dir: true},
		{Name: "mod/Main.class", Data: main},
		{Name: "mod/User.class", Data: user},
		{Name: descriptor.FabricEntry, Data: []byte(fabricMod)},
		{Name: "example.mixins.json", Data: []byte(`{"package": "mod.mixin", "refmap": "example-refmap.json"}`)},
		{Name: "example-refmap.json", Data: []byte(refmapJSON)},
		{Name: "example.accesswidener", Data: []byte(widener)},
		{Name: "assets/example/lang/en_us.json", Data: []byte(`{"key": "value"}`)},
	}

	writeJar(t, f.inputs.Runtime,
		&jar.Entry{Name: "META-INF/MANIFEST.MF", Data: []byte("Manifest-Version: 1.0\r\n")},
		&jar.Entry{Name: "mod/rt/", Dir: true},
		&jar.Entry{Name: "mod/rt/ConvertedModInitializer.class", Data: []byte("runtime base")},
		&jar.Entry{Name: "mod/rt/Agnos.class", Data: []byte("runtime agnos")},
		&jar.Entry{Name: "mod/rt/FabricAgnos.class", Data: []byte("fabric agnos")},
		&jar.Entry{Name: "mod/rt/ForgeAgnos.class", Data: []byte("forge agnos")},
	)

	return f
}

func (f *files) writeModule(t *testing.T) {
	t.Helper()
	writeJar(t, f.inputs.Module, f.entries...)
}

func newRunner(t *testing.T) (*Runner, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zap.InfoLevel)
	r := NewRunner(config.Default(), diagnostic.NewSink(zap.New(core)))
	r.Now = func() time.Time { return fixed }

	return r, logs
}

func output(t *testing.T, path string) *jar.Module {
	t.Helper()

	m, err := jar.Open(context.Background(), path)
	require.NoError(t, err)

	return m
}

func entry(t *testing.T, m *jar.Module, name string) []byte {
	t.Helper()

	e, ok := m.Entry(name)
	require.True(t, ok, "missing entry %s", name)

	return e.Data
}

func TestRunEndToEnd(t *testing.T) {
	f := fixture(t)
	f.writeModule(t)

	r, logs := newRunner(t)

	var dump bytes.Buffer
	r.DumpMappings = &dump

	res, err := r.Run(context.Background(), f.inputs)
	require.NoError(t, err)
	require.NoError(t, r.Sink().Diagnostics().Error())

	assert.Equal(t, 2, res.Rewritten)
	assert.Equal(t, 3, res.Sidecars)
	assert.Equal(t, 1, res.Removed)
	assert.Contains(t, dump.String(), "net/minecraft/class_1 net/minecraft/Target")

	out := output(t, f.inputs.Output)

	t.Run("classes", func(t *testing.T) {
		user, err := classfile.Parse(entry(t, out, "mod/User.class"))
		require.NoError(t, err)

		run := user.Method("run", "()V")
		require.NotNil(t, run)
		assert.Equal(t, classfile.FieldRef("net/minecraft/Target", "power", "I"), run.Code().Insns[0].Const)
		assert.Equal(t, classfile.MethodRef("net/minecraft/Target", "tick", "()V"), run.Code().Insns[1].Const)

		main, err := classfile.Parse(entry(t, out, "mod/Main.class"))
		require.NoError(t, err)
		assert.Equal(t, "mod/rt/ConvertedModInitializer", main.Super)
		assert.Empty(t, main.Interfaces)

		marker := classfile.Annotations(main.Attributes, true)
		require.NotNil(t, marker)
		require.Len(t, marker.Annotations, 1)

		v, ok := marker.Annotations[0].Element("value")
		require.True(t, ok)
		assert.Equal(t, "example", v.Const.Text)
	})

	t.Run("descriptors", func(t *testing.T) {
		_, ok := out.Entry(descriptor.FabricEntry)
		assert.False(t, ok)

		toml, err := descriptor.ParseModsTOML(entry(t, out, descriptor.ModsTOMLEntry))
		require.NoError(t, err)
		assert.Equal(t, "MIT", toml.License)
		require.Len(t, toml.Mods, 1)
		assert.Equal(t, "example", toml.Mods[0].ModID)
		assert.Equal(t, "Someone, Other", toml.Mods[0].Authors)

		mf, err := descriptor.ParseManifest(entry(t, out, descriptor.ManifestEntry))
		require.NoError(t, err)

		for name, want := range map[string]string{
			"Created-By":               "test",
			"MixinConfigs":             "example.mixins.json",
			"Implementation-Version":   "1.2.0",
			"Implementation-Timestamp": "2024-03-01T12:00:00+0000",
		} {
			got, ok := mf.Get(name)
			assert.True(t, ok, name)
			assert.Equal(t, want, got, name)
		}
	})

	t.Run("sidecars", func(t *testing.T) {
		refmap := string(entry(t, out, "example-refmap.json"))
		assert.Contains(t, refmap, `"power": "Lnet/minecraft/Target;power:I"`)
		assert.Contains(t, refmap, `"named:srg"`)

		at := string(entry(t, out, "META-INF/accesstransformer.cfg"))
		assert.Contains(t, at, "public net.minecraft.Target power\n")
	})

	t.Run("passthrough", func(t *testing.T) {
		assert.Equal(t, []byte(`{"key": "value"}`), entry(t, out, "assets/example/lang/en_us.json"))
		assert.Equal(t, []byte("{\"package\": \"mod.mixin\", \"refmap\": \"example-refmap.json\"}"), entry(t, out, "example.mixins.json"))
	})

	t.Run("runtime", func(t *testing.T) {
		assert.Equal(t, []byte("runtime base"), entry(t, out, "mod/rt/ConvertedModInitializer.class"))
		assert.Equal(t, []byte("forge agnos"), entry(t, out, "mod/rt/ForgeAgnos.class"))

		for _, gone := range []string{"mod/rt/Agnos.class", "mod/rt/FabricAgnos.class", "example.accesswidener"} {
			_, ok := out.Entry(gone)
			assert.False(t, ok, gone)
		}

		got, _ := descriptor.ParseManifest(entry(t, out, descriptor.ManifestEntry))
		_, ok := got.Get("Created-By")
		assert.True(t, ok, "runtime manifest must not replace the module manifest")
	})

	assert.Equal(t, 1, logs.FilterMessage("done").Len())
}

func TestRunMissingDescriptor(t *testing.T) {
	f := fixture(t)

	var kept []*jar.Entry
	for _, e := range f.entries {
		if e.Name != descriptor.FabricEntry {
			kept = append(kept, e)
		}
	}

	f.entries = kept
	f.writeModule(t)

	// The mapping tables are never read.
	require.NoError(t, os.Remove(f.inputs.Target))

	r, _ := newRunner(t)

	_, err := r.Run(context.Background(), f.inputs)

	var missing *MissingInputError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, descriptor.FabricEntry, missing.Entry)

	_, err = os.Stat(f.inputs.Output)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunCreatesManifestFirst(t *testing.T) {
	f := fixture(t)
	f.entries = f.entries[1:]
	f.writeModule(t)

	r, _ := newRunner(t)

	_, err := r.Run(context.Background(), f.inputs)
	require.NoError(t, err)

	out := output(t, f.inputs.Output)
	require.NotZero(t, out.Len())
	assert.Equal(t, descriptor.ManifestEntry, out.Entries()[0].Name)

	mf, err := descriptor.ParseManifest(out.Entries()[0].Data)
	require.NoError(t, err)

	v, ok := mf.Get("Manifest-Version")
	require.True(t, ok)
	assert.Equal(t, "1.0", v)

	_, ok = mf.Get("Created-By")
	assert.False(t, ok)
}

func TestRunMalformedSidecarWritesNothing(t *testing.T) {
	f := fixture(t)

	for _, e := range f.entries {
		if e.Name == "example-refmap.json" {
			e.Data = []byte("{\n  \"mappings\": {\n}")
		}
	}

	f.writeModule(t)

	r, _ := newRunner(t)

	_, err := r.Run(context.Background(), f.inputs)

	var perr *diagnostic.ParseError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, "example-refmap.json", perr.Source)

	_, err = os.Stat(f.inputs.Output)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunInvalidConfig(t *testing.T) {
	f := fixture(t)
	f.writeModule(t)

	cfg := config.Default()
	cfg.DisablePasses = []string{"Inline"}

	_, err := NewRunner(cfg, nil).Run(context.Background(), f.inputs)
	require.ErrorIs(t, err, config.ErrInvalid)
	assert.True(t, strings.Contains(err.Error(), "Inline"), err.Error())
}

func TestRunDisabledPass(t *testing.T) {
	f := fixture(t)
	f.writeModule(t)

	cfg := config.Default()
	cfg.DisablePasses = []string{"entrypoint"}

	r, _ := newRunner(t)
	r.cfg = cfg

	_, err := r.Run(context.Background(), f.inputs)
	require.NoError(t, err)

	main, err := classfile.Parse(entry(t, output(t, f.inputs.Output), "mod/Main.class"))
	require.NoError(t, err)
	assert.Equal(t, "java/lang/Object", main.Super)
	assert.Equal(t, []string{"net/fabricmc/api/ModInitializer"}, main.Interfaces)
}
