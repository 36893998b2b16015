package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store with the same matching semantics as the
// GORM implementation. It backs engine tests that don't need a database.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  uint
	entries []*Entry
	media   []*Media
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (m *MemoryStore) matches(e *Entry, contentType string, q Query) bool {
	if e.ContentType != contentType {
		return false
	}
	if q.Status != "" && e.Status != q.Status {
		return false
	}
	if q.Locale != "" && e.Locale != q.Locale {
		return false
	}
	if len(q.DocumentIDs) > 0 {
		found := false
		for _, id := range q.DocumentIDs {
			if e.DocumentID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.Field != "" {
		v, ok := e.Data[q.Field]
		if !ok || fmt.Sprintf("%v", v) != fmt.Sprintf("%v", q.Value) {
			return false
		}
	}
	return true
}

func (m *MemoryStore) FindMany(ctx context.Context, contentType string, q Query) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Entry
	for _, e := range m.entries {
		if m.matches(e, contentType, q) {
			out = append(out, cloneEntry(e))
		}
	}
	if q.Sort != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return fmt.Sprintf("%v", out[i].Data[q.Sort]) < fmt.Sprintf("%v", out[j].Data[q.Sort])
		})
	}
	return out, nil
}

func (m *MemoryStore) FindOne(ctx context.Context, contentType string, q Query) (*Entry, error) {
	entries, err := m.FindMany(ctx, contentType, q)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", contentType, ErrNotFound)
	}
	return entries[0], nil
}

func (m *MemoryStore) Create(ctx context.Context, e *Entry) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := cloneEntry(e)
	if stored.DocumentID == "" {
		stored.DocumentID = uuid.NewString()
	}
	if stored.Locale == "" {
		stored.Locale = DefaultLocale
	}
	stored.ID = m.nextID
	m.nextID++
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.entries = append(m.entries, stored)
	return cloneEntry(stored), nil
}

func (m *MemoryStore) Update(ctx context.Context, e *Entry) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, stored := range m.entries {
		if stored.DocumentID == e.DocumentID && stored.Locale == e.Locale && stored.Status == e.Status {
			stored.Data = cloneData(e.Data)
			stored.PublishedAt = e.PublishedAt
			stored.UpdatedAt = time.Now()
			return cloneEntry(stored), nil
		}
	}
	return nil, fmt.Errorf("%s %s (%s/%s): %w", e.ContentType, e.DocumentID, e.Locale, e.Status, ErrNotFound)
}

func (m *MemoryStore) FindMediaByHash(ctx context.Context, hash string) (*Media, error) {
	return m.findMedia(func(md *Media) bool { return md.Hash == hash })
}

func (m *MemoryStore) FindMediaByName(ctx context.Context, name string) (*Media, error) {
	return m.findMedia(func(md *Media) bool { return md.Name == name })
}

func (m *MemoryStore) FindMediaByDocumentID(ctx context.Context, documentID string) (*Media, error) {
	return m.findMedia(func(md *Media) bool { return md.DocumentID == documentID })
}

func (m *MemoryStore) findMedia(match func(*Media) bool) (*Media, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, md := range m.media {
		if match(md) {
			clone := *md
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) CreateMedia(ctx context.Context, md *Media) (*Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *md
	if stored.DocumentID == "" {
		stored.DocumentID = uuid.NewString()
	}
	stored.ID = m.nextID
	m.nextID++
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.media = append(m.media, &stored)
	clone := stored
	return &clone, nil
}

func cloneEntry(e *Entry) *Entry {
	clone := *e
	clone.Data = cloneData(e.Data)
	return &clone
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
