package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry holds the known content-type and component schemas. Schemas are
// immutable once registered; the registry is safe for concurrent readers.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry creates an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds a schema to the registry, replacing any previous entry with
// the same UID.
func (r *Registry) Register(s *Schema) error {
	if s == nil || s.UID == "" {
		return fmt.Errorf("schema must have a uid")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.UID] = s
	return nil
}

// Get returns the schema for the given UID.
func (r *Registry) Get(uid string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[uid]
	if !ok {
		return nil, fmt.Errorf("unknown content type %q", uid)
	}
	return s, nil
}

// Has reports whether a schema with the given UID is registered.
func (r *Registry) Has(uid string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.schemas[uid]
	return ok
}

// ContentTypes returns the UIDs of all registered content types (components
// excluded), sorted for deterministic iteration.
func (r *Registry) ContentTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uids := make([]string, 0, len(r.schemas))
	for uid, s := range r.schemas {
		if s.CollectionKind == "component" {
			continue
		}
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}

// LoadDir loads every *.json schema file in dir into the registry.
// File contents follow the Schema JSON shape; the file name is ignored.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read schema directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read schema file %s: %w", path, err)
		}
		var s Schema
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to parse schema file %s: %w", path, err)
		}
		if err := r.Register(&s); err != nil {
			return fmt.Errorf("failed to register schema from %s: %w", path, err)
		}
	}
	return nil
}
