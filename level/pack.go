package level

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed levels.toml
var defaultPack string

// ErrUnknownLevel is returned when a pack has no level of the requested name
var ErrUnknownLevel = errors.New("unknown level")

// Pack is an ordered set of named levels
type Pack struct {
	Levels []Spec `toml:"level"`
}

// DefaultPack returns the embedded level pack
func DefaultPack() *Pack {
	p, err := DecodePack(strings.NewReader(defaultPack))
	if err != nil {
		panic(fmt.Sprintf("embedded level pack: %v", err))
	}
	return p
}

// LoadPack reads a level pack file
func LoadPack(path string) (*Pack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open level pack: %w", err)
	}
	defer f.Close()

	p, err := DecodePack(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// DecodePack parses a TOML pack, levels start from DefaultSpec so omitted keys keep stock values
// Unknown keys are rejected so typos do not silently fall back to defaults
func DecodePack(r io.Reader) (*Pack, error) {
	var raw struct {
		Levels []toml.Primitive `toml:"level"`
	}
	md, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("decode level pack: %w", err)
	}

	p := &Pack{Levels: make([]Spec, 0, len(raw.Levels))}
	seen := make(map[string]bool)
	for i, prim := range raw.Levels {
		s := DefaultSpec()
		s.Name = ""
		if err := md.PrimitiveDecode(prim, &s); err != nil {
			return nil, fmt.Errorf("level %d: %w", i, err)
		}
		if s.Name == "" {
			s.Name = fmt.Sprintf("level-%d", i+1)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("level %d: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true
		p.Levels = append(p.Levels, s)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in level pack: %s", strings.Join(keys, ", "))
	}
	if len(p.Levels) == 0 {
		return nil, errors.New("level pack has no levels")
	}
	return p, nil
}

// Level returns the named level
func (p *Pack) Level(name string) (Spec, error) {
	for _, s := range p.Levels {
		if s.Name == name {
			return s, nil
		}
	}
	return Spec{}, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
}

// Index returns the position of a named level, -1 if absent
func (p *Pack) Index(name string) int {
	for i, s := range p.Levels {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Names lists level names in pack order
func (p *Pack) Names() []string {
	out := make([]string, len(p.Levels))
	for i, s := range p.Levels {
		out[i] = s.Name
	}
	return out
}
