package level

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultPack(t *testing.T) {
	p := DefaultPack()
	names := p.Names()
	if len(names) == 0 || names[0] != "classic" {
		t.Fatalf("Expected classic first, got %v", names)
	}

	classic, err := p.Level("classic")
	if err != nil {
		t.Fatalf("Level(classic): %v", err)
	}
	want := DefaultSpec()
	if classic != want {
		t.Errorf("Expected classic to match defaults, got %+v", classic)
	}

	// Every stock level generates cleanly
	for i, s := range p.Levels {
		res := generate(t, s, uint64(i))
		for _, v := range res.Violations {
			t.Errorf("Level %s: %s", s.Name, v)
		}
	}
}

func TestDecodePackDefaults(t *testing.T) {
	src := `
[[level]]
name = "small"
plate_count = 4
total_item_count = 12

[[level]]
type_count = 2
`
	p, err := DecodePack(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodePack: %v", err)
	}
	if len(p.Levels) != 2 {
		t.Fatalf("Expected 2 levels, got %d", len(p.Levels))
	}
	small := p.Levels[0]
	if small.PlateCount != 4 || small.TotalItemCount != 12 || small.TypeCount != 4 || small.TimeLimitSeconds != 300 {
		t.Errorf("Expected overrides on top of defaults, got %+v", small)
	}
	if p.Levels[1].Name != "level-2" || p.Levels[1].TypeCount != 2 {
		t.Errorf("Expected generated name and override, got %+v", p.Levels[1])
	}
	if p.Index("level-2") != 1 || p.Index("missing") != -1 {
		t.Error("Unexpected Index results")
	}
}

func TestDecodePackErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown key", "[[level]]\nname = \"a\"\nplates = 3\n", "unknown keys"},
		{"duplicate name", "[[level]]\nname = \"a\"\n[[level]]\nname = \"a\"\n", "duplicate"},
		{"empty", "", "no levels"},
		{"syntax", "[[level]\n", "decode"},
		{"wrong type", "[[level]]\nplate_count = \"nine\"\n", "level 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePack(strings.NewReader(tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestPackLookup(t *testing.T) {
	_, err := DefaultPack().Level("nope")
	if !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("Expected ErrUnknownLevel, got %v", err)
	}
}

func TestLoadPack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.toml")
	if err := os.WriteFile(path, []byte("[[level]]\nname = \"x\"\nlocked_plate_count = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadPack(path)
	if err != nil {
		t.Fatalf("LoadPack: %v", err)
	}
	if s, _ := p.Level("x"); s.LockedPlateCount != 1 {
		t.Errorf("Expected locked_plate_count 1, got %d", s.LockedPlateCount)
	}

	if _, err := LoadPack(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestTimeLimit(t *testing.T) {
	s := DefaultSpec()
	if s.TimeLimit().Seconds() != 300 {
		t.Errorf("Expected 300s, got %v", s.TimeLimit())
	}
	s.TimeLimitSeconds = 0
	if s.TimeLimit() != 0 {
		t.Error("Expected untimed level")
	}
}
