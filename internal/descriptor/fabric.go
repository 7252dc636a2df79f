package descriptor

import (
	"encoding/json"
	"fmt"

	"forgery/internal/common"
)

// FabricEntry is the descriptor entry that marks a module as convertible.
const FabricEntry = "fabric.mod.json"

// Mod is the subset of fabric.mod.json the conversion reads.
type Mod struct {
	ID          string    `json:"id"`
	Version     string    `json:"version"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Authors     People    `json:"authors"`
	License     Licenses  `json:"license"`
	Mixins      MixinList `json:"mixins"`
}

// FirstAuthor returns the first author, or "".
func (m *Mod) FirstAuthor() string {
	return common.FirstOr(m.Authors, "")
}

// FirstMixin returns the first mixin configuration entry, or "".
func (m *Mod) FirstMixin() string {
	return common.FirstOr(m.Mixins, "")
}

// ParseMod decodes a fabric.mod.json document.
func ParseMod(data []byte) (*Mod, error) {
	var m Mod
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", FabricEntry, err)
	}

	if m.ID == "" {
		return nil, fmt.Errorf("decoding %s: missing id", FabricEntry)
	}

	return &m, nil
}

// People accepts both "name" and {"name": ...} entries.
type People []string

func (p *People) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, r := range raw {
		var name string
		if json.Unmarshal(r, &name) == nil {
			*p = append(*p, name)
			continue
		}

		var obj struct {
			Name string `json:"name"`
		}

		if err := json.Unmarshal(r, &obj); err != nil {
			return err
		}

		*p = append(*p, obj.Name)
	}

	return nil
}

// MixinList accepts both "file.json" and {"config": "file.json"} entries.
type MixinList []string

func (m *MixinList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, r := range raw {
		var name string
		if json.Unmarshal(r, &name) == nil {
			*m = append(*m, name)
			continue
		}

		var obj struct {
			Config string `json:"config"`
		}

		if err := json.Unmarshal(r, &obj); err != nil {
			return err
		}

		*m = append(*m, obj.Config)
	}

	return nil
}

// Licenses accepts a string or an array of strings.
type Licenses []string

func (s *Licenses) UnmarshalJSON(data []byte) error {
	var one string
	if json.Unmarshal(data, &one) == nil {
		*s = Licenses{one}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}

	*s = many

	return nil
}

// MixinConfig is the part of a mixin configuration the conversion reads.
type MixinConfig struct {
	Package string `json:"package"`
	Refmap  string `json:"refmap"`
}

// ParseMixinConfig decodes a mixin configuration.
func ParseMixinConfig(name string, data []byte) (*MixinConfig, error) {
	var c MixinConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}

	return &c, nil
}
