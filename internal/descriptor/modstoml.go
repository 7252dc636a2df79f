package descriptor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// ModsTOMLEntry is the descriptor entry read by the target loader.
const ModsTOMLEntry = "META-INF/mods.toml"

// Loader defaults written to mods.toml.
const (
	DefaultModLoader     = "javafml"
	DefaultLoaderVersion = "[32,)"
)

// ModsTOML is the layout of META-INF/mods.toml.
type ModsTOML struct {
	ModLoader     string     `toml:"modLoader"`
	LoaderVersion string     `toml:"loaderVersion"`
	License       string     `toml:"license"`
	Mods          []ModsInfo `toml:"mods"`
}

// ModsInfo is one [[mods]] table.
type ModsInfo struct {
	ModID       string `toml:"modId"`
	Version     string `toml:"version"`
	DisplayName string `toml:"displayName"`
	Authors     string `toml:"authors,omitempty"`
	Description string `toml:"description,omitempty"`
}

// LoaderOptions overrides the loader fields; empty values use defaults.
type LoaderOptions struct {
	ModLoader     string
	LoaderVersion string
}

// NewModsTOML translates m.
func NewModsTOML(m *Mod, opts LoaderOptions) *ModsTOML {
	loader := opts.ModLoader
	if loader == "" {
		loader = DefaultModLoader
	}

	version := opts.LoaderVersion
	if version == "" {
		version = DefaultLoaderVersion
	}

	return &ModsTOML{
		ModLoader:     loader,
		LoaderVersion: version,
		License:       strings.Join(m.License, ", "),
		Mods: []ModsInfo{{
			ModID:       m.ID,
			Version:     m.Version,
			DisplayName: m.Name,
			Authors:     strings.Join(m.Authors, ", "),
			Description: m.Description,
		}},
	}
}

// Encode renders the descriptor as TOML.
func (t *ModsTOML) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(t); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", ModsTOMLEntry, err)
	}

	return buf.Bytes(), nil
}

// ParseModsTOML decodes a mods.toml document.
func ParseModsTOML(data []byte) (*ModsTOML, error) {
	var t ModsTOML
	if _, err := toml.Decode(string(data), &t); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", ModsTOMLEntry, err)
	}

	return &t, nil
}
