package colorpick

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ColorPair holds the colours a placeholder blends between. Dark is used
// over light backgrounds (contrast black), Light over dark ones.
type ColorPair struct {
	Dark  Color `yaml:"dark"`
	Light Color `yaml:"light"`
}

// PlaceholderTable maps placeholders to colour pairs. A table is immutable
// once built and safe for concurrent use.
type PlaceholderTable struct {
	pairs map[Placeholder]ColorPair
}

var defaultPairs = map[Placeholder]ColorPair{
	PlaceholderSurface:         {Dark: 0x33000000, Light: 0x33FFFFFF},
	PlaceholderSurfaceContrast: {Dark: 0x99000000, Light: 0x99FFFFFF},
	PlaceholderTextContrast:    {Dark: 0xE5000000, Light: 0xFFFFFFFF},
	PlaceholderAccent:          {Dark: 0xFF0A59F7, Light: 0xFF5291FF},
	PlaceholderForeground:      {Dark: Black, Light: White},
}

// DefaultPlaceholderTable returns the built-in table.
func DefaultPlaceholderTable() *PlaceholderTable {
	return NewPlaceholderTable(nil)
}

// NewPlaceholderTable builds a table from the defaults overridden by pairs.
func NewPlaceholderTable(pairs map[Placeholder]ColorPair) *PlaceholderTable {
	t := &PlaceholderTable{pairs: make(map[Placeholder]ColorPair, len(defaultPairs)+len(pairs))}
	for p, cp := range defaultPairs {
		t.pairs[p] = cp
	}
	for p, cp := range pairs {
		if p == PlaceholderNone {
			continue
		}
		t.pairs[p] = cp
	}
	return t
}

// Lookup returns the pair for p.
func (t *PlaceholderTable) Lookup(p Placeholder) (ColorPair, bool) {
	if t == nil {
		cp, ok := defaultPairs[p]
		return cp, ok
	}
	cp, ok := t.pairs[p]
	return cp, ok
}

// Resolve maps a contrast colour onto the placeholder's pair, weighting
// Light by the contrast colour's luminance. Placeholders without a pair
// return contrast unchanged.
func (t *PlaceholderTable) Resolve(p Placeholder, contrast Color) Color {
	cp, ok := t.Lookup(p)
	if !ok {
		return contrast
	}
	return InterpolateColor(cp.Dark, cp.Light, Luminance(contrast)/255)
}

// placeholderFile is the YAML layout:
//
//	placeholders:
//	  surface: {dark: "#33000000", light: "#33FFFFFF"}
type placeholderFile struct {
	Placeholders map[string]ColorPair `yaml:"placeholders"`
}

// ParsePlaceholderTable parses a YAML placeholder table. Unlisted
// placeholders keep their defaults.
func ParsePlaceholderTable(data []byte) (*PlaceholderTable, error) {
	var f placeholderFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("colorpick: parse placeholder table: %w", err)
	}
	pairs := make(map[Placeholder]ColorPair, len(f.Placeholders))
	for name, cp := range f.Placeholders {
		p, err := ParsePlaceholder(name)
		if err != nil {
			return nil, err
		}
		pairs[p] = cp
	}
	return NewPlaceholderTable(pairs), nil
}

// LoadPlaceholderTable reads a YAML table from path. A missing file yields
// the default table.
func LoadPlaceholderTable(path string) (*PlaceholderTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultPlaceholderTable(), nil
		}
		return nil, fmt.Errorf("colorpick: read placeholder table: %w", err)
	}
	return ParsePlaceholderTable(data)
}

// UnmarshalYAML accepts the formats of ParseColor.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MarshalYAML writes the colour as #AARRGGBB.
func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}
