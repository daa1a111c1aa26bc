package chain

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// blockDoc is the serialized shape of a Block. Config stays loosely typed on
// the way in so it can be decoded once Type is known.
type blockDoc struct {
	ID     string                 `json:"id" yaml:"id"`
	Type   BlockType              `json:"type" yaml:"type"`
	Label  string                 `json:"label,omitempty" yaml:"label,omitempty"`
	Config map[string]interface{} `json:"config" yaml:"config"`
}

type blockOut struct {
	ID     string    `json:"id" yaml:"id"`
	Type   BlockType `json:"type" yaml:"type"`
	Label  string    `json:"label,omitempty" yaml:"label,omitempty"`
	Config Config    `json:"config" yaml:"config"`
}

// MarshalJSON implements json.Marshaler.
func (b Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(blockOut{ID: b.ID, Type: b.Type, Label: b.Label, Config: b.Config})
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Block) UnmarshalJSON(data []byte) error {
	var doc blockDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return b.fromDoc(doc)
}

// MarshalYAML implements yaml.Marshaler.
func (b Block) MarshalYAML() (interface{}, error) {
	return blockOut{ID: b.ID, Type: b.Type, Label: b.Label, Config: b.Config}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Block) UnmarshalYAML(value *yaml.Node) error {
	var doc blockDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	return b.fromDoc(doc)
}

func (b *Block) fromDoc(doc blockDoc) error {
	cfg, err := DecodeConfig(doc.Type, doc.Config)
	if err != nil {
		return fmt.Errorf("block %s: %w", doc.ID, err)
	}
	*b = Block{ID: doc.ID, Type: doc.Type, Label: doc.Label, Config: cfg}
	return nil
}

// DecodeConfig converts a loosely typed configuration map (as produced by a
// JSON or YAML decoder, or by an editor form) into the concrete Config for t.
// Fields not present in raw keep their zero value.
func DecodeConfig(t BlockType, raw map[string]interface{}) (Config, error) {
	cfg := newConfig(t)
	if cfg == nil {
		return nil, fmt.Errorf("unknown block type %q", t)
	}
	if len(raw) == 0 {
		return cfg, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode %s config: %w", t, err)
	}
	if cc, ok := cfg.(*ConditionConfig); ok && cc.Composite {
		if n := listLen(raw["subconditions"]); n != len(cc.Subconditions) {
			return nil, fmt.Errorf("decode %s config: composite condition needs exactly %d subconditions, got %d", t, len(cc.Subconditions), n)
		}
	}
	return cfg, nil
}

// listLen is the length of a decoded list value; 0 when v is absent or not a list.
func listLen(v interface{}) int {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len()
	}
	return 0
}

// Format selects the serialization of a chain document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Encode writes c to w in the given format.
func Encode(w io.Writer, c Chain, f Format) error {
	c = normalize(c)
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("encode chain yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("encode chain json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown chain format %q", f)
}

// Decode reads a chain document in the given format from r.
func Decode(r io.Reader, f Format) (Chain, error) {
	var c Chain
	switch f {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&c); err != nil && err != io.EOF {
			return Chain{}, fmt.Errorf("parse chain yaml: %w", err)
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&c); err != nil {
			return Chain{}, fmt.Errorf("parse chain json: %w", err)
		}
	default:
		return Chain{}, fmt.Errorf("unknown chain format %q", f)
	}
	return normalize(c), nil
}

// FormatFromPath guesses the document format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

func normalize(c Chain) Chain {
	if c.Blocks == nil {
		c.Blocks = []Block{}
	}
	if c.Connections == nil {
		c.Connections = []Connection{}
	}
	return c
}
