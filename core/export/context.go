package export

import (
	"content-porter/core/document"
)

// Context is the per-run mutable state of one export: the processed-identity
// set, the discovered-relations frontier, and the accumulated output. It is
// owned by a single processor run and discarded after serialization.
type Context struct {
	processed map[string]struct{}
	frontier  map[string]map[string]struct{}
	exported  map[string][]document.VersionedEntry
	idFields  map[string]string
}

func newContext() *Context {
	return &Context{
		processed: make(map[string]struct{}),
		frontier:  make(map[string]map[string]struct{}),
		exported:  make(map[string][]document.VersionedEntry),
		idFields:  make(map[string]string),
	}
}

func identityKey(contentType, documentID string) string {
	return contentType + "|" + documentID
}

// markProcessed records an identity, returning false when it was already
// processed. Records reached twice via different relation paths serialize
// once.
func (c *Context) markProcessed(contentType, documentID string) bool {
	key := identityKey(contentType, documentID)
	if _, seen := c.processed[key]; seen {
		return false
	}
	c.processed[key] = struct{}{}
	return true
}

func (c *Context) isProcessed(contentType, documentID string) bool {
	_, seen := c.processed[identityKey(contentType, documentID)]
	return seen
}

// discover queues an identity for a later traversal pass unless it has
// already been processed or queued.
func (c *Context) discover(contentType, documentID string) {
	if c.isProcessed(contentType, documentID) {
		return
	}
	set, ok := c.frontier[contentType]
	if !ok {
		set = make(map[string]struct{})
		c.frontier[contentType] = set
	}
	set[documentID] = struct{}{}
}

// drainFrontier returns the queued identities and resets the frontier for
// the next pass.
func (c *Context) drainFrontier() map[string][]string {
	if len(c.frontier) == 0 {
		return nil
	}
	out := make(map[string][]string, len(c.frontier))
	for contentType, set := range c.frontier {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		out[contentType] = ids
	}
	c.frontier = make(map[string]map[string]struct{})
	return out
}

// append adds a serialized entry to the output payload.
func (c *Context) append(contentType string, entry document.VersionedEntry) {
	c.exported[contentType] = append(c.exported[contentType], entry)
}
