package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PkgPlaceholder is replaced by the runtime package.
const PkgPlaceholder = "{pkg}"

// Config is the run configuration.
type Config struct {
	Version    string     `yaml:"version"`
	Namespaces Namespaces `yaml:"namespaces"`
	EntryPoint EntryPoint `yaml:"entrypoint"`
	Dispatch   Dispatch   `yaml:"dispatch"`
	// Hoist lists annotation descriptors made runtime visible.
	Hoist []string `yaml:"hoist"`
	// Injector is the descriptor of the mixin annotation.
	Injector        string      `yaml:"injector"`
	RefmapNamespace string      `yaml:"refmap_namespace"`
	Loader          Loader      `yaml:"loader"`
	Runtime         Runtime     `yaml:"runtime"`
	Synthetic       []Synthetic `yaml:"synthetic"`
	DisablePasses   []string    `yaml:"disable_passes,omitempty"`
	// Classpath lists extra jars for inheritance queries.
	Classpath []string `yaml:"classpath,omitempty"`
	CacheSize int      `yaml:"cache_size,omitempty"`
}

// Namespaces selects the columns read from the Tiny table.
type Namespaces struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// EntryPoint configures the entry-point conversion.
type EntryPoint struct {
	Interface string `yaml:"interface"`
	Base      string `yaml:"base"`
	Marker    string `yaml:"marker"`
}

// Dispatch configures the dispatch class fix-up.
type Dispatch struct {
	Class string `yaml:"class"`
	From  string `yaml:"from"`
	To    string `yaml:"to"`
}

// Loader holds the mods.toml loader fields.
type Loader struct {
	ModLoader     string `yaml:"mod_loader"`
	LoaderVersion string `yaml:"loader_version"`
}

// Runtime controls how the helper jar is overlaid.
type Runtime struct {
	SkipPrefixes []string `yaml:"skip_prefixes"`
	SkipSuffixes []string `yaml:"skip_suffixes"`
	Remove       []string `yaml:"remove"`
}

// Synthetic is a class mapping added after parsing.
type Synthetic struct {
	Obf    string            `yaml:"obf"`
	Deobf  string            `yaml:"deobf"`
	Fields map[string]string `yaml:"fields,omitempty"`
}

// LoadFile loads and parses a configuration file. An empty path yields
// the defaults.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Config with defaults applied. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// Default returns the stock configuration.
func Default() *Config {
	var cfg Config

	applyDefaults(&cfg)

	return &cfg
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *Config) {
	def := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}

	def(&cfg.Version, "1")
	def(&cfg.Namespaces.From, "official")
	def(&cfg.Namespaces.To, "intermediary")
	def(&cfg.EntryPoint.Interface, "net/fabricmc/api/ModInitializer")
	def(&cfg.EntryPoint.Base, PkgPlaceholder+"/ConvertedModInitializer")
	def(&cfg.EntryPoint.Marker, "Lnet/minecraftforge/fml/common/Mod;")
	def(&cfg.Dispatch.Class, PkgPlaceholder+"/Agnos")
	def(&cfg.Dispatch.From, "FabricAgnos")
	def(&cfg.Dispatch.To, "ForgeAgnos")
	def(&cfg.Injector, "Lorg/spongepowered/asm/mixin/Mixin;")
	def(&cfg.RefmapNamespace, "named:srg")
	def(&cfg.Loader.ModLoader, "javafml")
	def(&cfg.Loader.LoaderVersion, "[32,)")

	if cfg.Hoist == nil {
		cfg.Hoist = []string{"Lnet/minecraftforge/api/distmarker/OnlyIn;"}
	}

	if cfg.Runtime.SkipPrefixes == nil {
		cfg.Runtime.SkipPrefixes = []string{"META-INF/"}
	}

	if cfg.Runtime.SkipSuffixes == nil {
		cfg.Runtime.SkipSuffixes = []string{"/Agnos.class"}
	}

	if cfg.Runtime.Remove == nil {
		cfg.Runtime.Remove = []string{PkgPlaceholder + "/FabricAgnos.class"}
	}

	if cfg.Synthetic == nil {
		cfg.Synthetic = []Synthetic{
			{Obf: "net/fabricmc/api/Environment", Deobf: "net/minecraftforge/api/distmarker/OnlyIn"},
			{
				Obf:    "net/fabricmc/api/EnvType",
				Deobf:  "net/minecraftforge/api/distmarker/Dist",
				Fields: map[string]string{"SERVER": "DEDICATED_SERVER"},
			},
			{Obf: "io/github/prospector/modmenu/api/ModMenuApi", Deobf: PkgPlaceholder + "/ModMenuAdapter"},
			{Obf: "io/github/prospector/modmenu/api/ConfigScreenFactory", Deobf: PkgPlaceholder + "/ConfigScreenFactory"},
		}
	}
}

// Expand returns a copy of cfg with {pkg} replaced by pkg in internal
// form. Dotted class names in synthetic entries are normalised too.
func (cfg *Config) Expand(pkg string) *Config {
	pkg = strings.ReplaceAll(pkg, ".", "/")
	r := strings.NewReplacer(PkgPlaceholder, pkg)

	out := *cfg
	out.EntryPoint.Base = r.Replace(cfg.EntryPoint.Base)
	out.EntryPoint.Interface = r.Replace(cfg.EntryPoint.Interface)
	out.Dispatch.Class = r.Replace(cfg.Dispatch.Class)
	out.Runtime.Remove = replaceAll(r, cfg.Runtime.Remove)
	out.Runtime.SkipPrefixes = replaceAll(r, cfg.Runtime.SkipPrefixes)
	out.Runtime.SkipSuffixes = replaceAll(r, cfg.Runtime.SkipSuffixes)

	out.Synthetic = make([]Synthetic, len(cfg.Synthetic))
	for i, s := range cfg.Synthetic {
		out.Synthetic[i] = Synthetic{
			Obf:    strings.ReplaceAll(r.Replace(s.Obf), ".", "/"),
			Deobf:  strings.ReplaceAll(r.Replace(s.Deobf), ".", "/"),
			Fields: s.Fields,
		}
	}

	return &out
}

func replaceAll(r *strings.Replacer, in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = r.Replace(s)
	}

	return out
}

// Marshal serializes a Config to YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
