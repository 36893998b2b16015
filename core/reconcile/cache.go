package reconcile

import (
	"context"
	"sync"
	"time"

	"content-porter/core/store"

	"golang.org/x/sync/singleflight"
)

// storeIndex groups a content type's store records by identifier value and
// status.
type storeIndex struct {
	// Draft and Published map identifier value to the matching entry.
	Draft     map[string]*store.Entry
	Published map[string]*store.Entry

	// Built is the timestamp when this index was loaded.
	Built time.Time
}

// isExpired reports whether the index is stale for the given TTL.
// A zero TTL disables caching entirely.
func (i *storeIndex) isExpired(ttl time.Duration) bool {
	if ttl == 0 {
		return true
	}
	return time.Since(i.Built) > ttl
}

// indexCache holds store indices keyed by content type + identifier field,
// with singleflight protection against stampedes.
type indexCache struct {
	mu      sync.RWMutex
	indices map[string]*storeIndex
	sf      singleflight.Group
}

func newIndexCache() *indexCache {
	return &indexCache{indices: make(map[string]*storeIndex)}
}

// buildStoreIndex loads both status variants of a content type concurrently
// and indexes them by identifier value.
func buildStoreIndex(ctx context.Context, st store.Store, contentType, idField string) (*storeIndex, error) {
	var (
		drafts    []*store.Entry
		published []*store.Entry
		draftErr  error
		pubErr    error
		wg        sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		drafts, draftErr = st.FindMany(ctx, contentType, store.Query{Status: store.StatusDraft})
	}()
	go func() {
		defer wg.Done()
		published, pubErr = st.FindMany(ctx, contentType, store.Query{Status: store.StatusPublished})
	}()
	wg.Wait()

	if draftErr != nil {
		return nil, draftErr
	}
	if pubErr != nil {
		return nil, pubErr
	}

	index := &storeIndex{
		Draft:     make(map[string]*store.Entry, len(drafts)),
		Published: make(map[string]*store.Entry, len(published)),
		Built:     time.Now(),
	}
	for _, e := range drafts {
		if key := identifierOf(e, idField); key != "" {
			index.Draft[key] = e
		}
	}
	for _, e := range published {
		if key := identifierOf(e, idField); key != "" {
			index.Published[key] = e
		}
	}
	return index, nil
}

// getOrBuild returns a fresh index from the cache or builds one, using
// singleflight so concurrent plan calls share a single load.
func (c *indexCache) getOrBuild(ctx context.Context, st store.Store, contentType, idField string, ttl time.Duration) (*storeIndex, error) {
	key := contentType + "|" + idField

	c.mu.RLock()
	index, exists := c.indices[key]
	c.mu.RUnlock()

	if exists && !index.isExpired(ttl) {
		return index, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		index, exists := c.indices[key]
		c.mu.RUnlock()

		if exists && !index.isExpired(ttl) {
			return index, nil
		}

		fresh, err := buildStoreIndex(ctx, st, contentType, idField)
		if err != nil {
			return nil, err
		}

		if ttl > 0 {
			c.mu.Lock()
			c.indices[key] = fresh
			c.mu.Unlock()
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*storeIndex), nil
}

// invalidate drops every cached index. The import processor calls this after
// a run writes to the store.
func (c *indexCache) invalidate() {
	c.mu.Lock()
	c.indices = make(map[string]*storeIndex)
	c.mu.Unlock()
}
