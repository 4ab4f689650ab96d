package colorpick

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPlaceholderTable_Resolve(t *testing.T) {
	table := DefaultPlaceholderTable()
	tests := []struct {
		name        string
		placeholder Placeholder
		contrast    Color
		want        Color
	}{
		{"none passes through", PlaceholderNone, White, White},
		{"surface dark", PlaceholderSurface, Black, 0x33000000},
		{"surface light", PlaceholderSurface, White, 0x33FFFFFF},
		{"text contrast light", PlaceholderTextContrast, White, 0xFFFFFFFF},
		{"accent dark", PlaceholderAccent, Black, 0xFF0A59F7},
		{"accent light", PlaceholderAccent, White, 0xFF5291FF},
		{"foreground mid", PlaceholderForeground, ARGB(0xFF, 51, 51, 51), ARGB(0xFF, 51, 51, 51)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Resolve(tt.placeholder, tt.contrast); got != tt.want {
				t.Errorf("Resolve(%v, %v) = %v, want %v", tt.placeholder, tt.contrast, got, tt.want)
			}
		})
	}
}

func TestPlaceholderTable_NilUsesDefaults(t *testing.T) {
	var table *PlaceholderTable
	if got := table.Resolve(PlaceholderSurface, White); got != 0x33FFFFFF {
		t.Errorf("nil table Resolve = %v", got)
	}
}

func TestParsePlaceholderTable(t *testing.T) {
	data := []byte(`
placeholders:
  accent:
    dark: "#FF112233"
    light: "0xFF445566"
  Surface-Contrast: {dark: "#000000", light: "#FFFFFF"}
`)
	table, err := ParsePlaceholderTable(data)
	if err != nil {
		t.Fatalf("ParsePlaceholderTable: %v", err)
	}

	tests := []struct {
		placeholder Placeholder
		want        ColorPair
	}{
		{PlaceholderAccent, ColorPair{Dark: 0xFF112233, Light: 0xFF445566}},
		{PlaceholderSurfaceContrast, ColorPair{Dark: Black, Light: White}},
		{PlaceholderSurface, ColorPair{Dark: 0x33000000, Light: 0x33FFFFFF}},
	}
	for _, tt := range tests {
		got, ok := table.Lookup(tt.placeholder)
		if !ok || got != tt.want {
			t.Errorf("Lookup(%v) = %+v, want %+v", tt.placeholder, got, tt.want)
		}
	}
}

func TestParsePlaceholderTable_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown placeholder", "placeholders:\n  sky: {dark: \"#000000\", light: \"#FFFFFF\"}\n"},
		{"bad colour", "placeholders:\n  accent: {dark: \"blue\", light: \"#FFFFFF\"}\n"},
		{"not yaml", "placeholders: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePlaceholderTable([]byte(tt.data)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadPlaceholderTable(t *testing.T) {
	dir := t.TempDir()

	table, err := LoadPlaceholderTable(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if cp, _ := table.Lookup(PlaceholderForeground); cp != (ColorPair{Dark: Black, Light: White}) {
		t.Errorf("missing file did not give defaults: %+v", cp)
	}

	path := filepath.Join(dir, "table.yaml")
	if err := os.WriteFile(path, []byte("placeholders:\n  foreground: {dark: \"#FF101010\", light: \"#FFEEEEEE\"}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	table, err = LoadPlaceholderTable(path)
	if err != nil {
		t.Fatalf("LoadPlaceholderTable: %v", err)
	}
	if cp, _ := table.Lookup(PlaceholderForeground); cp.Dark != 0xFF101010 {
		t.Errorf("override not applied: %+v", cp)
	}
}

func TestParseEnums(t *testing.T) {
	for p := PlaceholderNone; p < numPlaceholders; p++ {
		got, err := ParsePlaceholder(p.String())
		if err != nil || got != p {
			t.Errorf("ParsePlaceholder(%q) = %v, %v", p.String(), got, err)
		}
	}
	for s := StrategyNone; s < numStrategies; s++ {
		got, err := ParseStrategy(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStrategy(%q) = %v, %v", s.String(), got, err)
		}
	}

	if got, err := ParseStrategy(" Client-Callback "); err != nil || got != StrategyClientCallback {
		t.Errorf("ParseStrategy normalisation = %v, %v", got, err)
	}
	if _, err := ParsePlaceholder("sky"); err == nil {
		t.Error("ParsePlaceholder accepted an unknown name")
	}
	if Strategy(99).String() != "Strategy(99)" || Placeholder(42).String() != "Placeholder(42)" {
		t.Error("out-of-range String() formatting")
	}
}
