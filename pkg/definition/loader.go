package definition

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store holds loaded definitions keyed by ID.
type Store struct {
	definitions map[string]Definition
}

// Definition returns the definition registered under id.
func (s *Store) Definition(id string) (Definition, bool) {
	if s == nil {
		return Definition{}, false
	}
	def, ok := s.definitions[id]
	return def, ok
}

// IDs lists the registered definition IDs in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.definitions))
	for id := range s.definitions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether the store holds no definitions.
func (s *Store) Empty() bool {
	return s == nil || len(s.definitions) == 0
}

// LoadFS walks fsys and parses every .json/.yaml/.yml file as one definition.
// Files without an id, duplicate ids, and malformed documents fail the load.
// A nil filesystem yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{definitions: make(map[string]Definition)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("definition: read %s: %w", path, err)
		}
		def, err := parse(data, path)
		if err != nil {
			return err
		}
		if _, exists := store.definitions[def.ID]; exists {
			return fmt.Errorf("definition: duplicate id %q (file %s)", def.ID, path)
		}
		store.definitions[def.ID] = def
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// LoadFile reads a single definition from an OS path. The watcher uses this
// for reloads.
func LoadFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("definition: read %s: %w", path, err)
	}
	return parse(data, path)
}

func parse(data []byte, path string) (Definition, error) {
	var def Definition
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &def); err != nil {
			return Definition{}, fmt.Errorf("definition: parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &def); err != nil {
			return Definition{}, fmt.Errorf("definition: parse %s: %w", path, err)
		}
	}

	def.ID = strings.TrimSpace(def.ID)
	if def.ID == "" {
		return Definition{}, fmt.Errorf("definition: file %s is missing an id", path)
	}

	for field, hint := range def.Hints {
		def.Hints[field] = sanitizeHint(hint)
	}
	return def, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
