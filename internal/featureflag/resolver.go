package featureflag

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Resolver answers whether a family's authoritative backend is the new one.
type Resolver interface {
	IsMigrated(family string) bool
}

// Static is an immutable flag snapshot taken at process start. Flipping a
// flag requires a restart.
type Static struct {
	migrated map[string]bool
}

// NewStatic builds a snapshot from the families marked migrated.
func NewStatic(families ...string) *Static {
	m := make(map[string]bool, len(families))
	for _, f := range families {
		if f = normalize(f); f != "" {
			m[f] = true
		}
	}
	return &Static{migrated: m}
}

// IsMigrated fails closed: unknown families stay on the legacy backend.
func (s *Static) IsMigrated(family string) bool {
	if s == nil {
		return false
	}
	return s.migrated[normalize(family)]
}

// Migrated lists the migrated families, sorted.
func (s *Static) Migrated() []string {
	out := make([]string, 0, len(s.migrated))
	for f := range s.migrated {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

type flagsFile struct {
	Families map[string]bool `yaml:"families"`
}

// Load merges the comma-list flags with an optional YAML file of the form
//
//	families:
//	  candidates: true
//	  applications: false
//
// Entries in the file override the list.
func Load(families []string, path string) (*Static, error) {
	s := NewStatic(families...)
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("featureflag: read %s: %w", path, err)
	}
	var file flagsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("featureflag: parse %s: %w", path, err)
	}
	for name, on := range file.Families {
		name = normalize(name)
		if name == "" {
			continue
		}
		if on {
			s.migrated[name] = true
		} else {
			delete(s.migrated, name)
		}
	}
	return s, nil
}

func normalize(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}
