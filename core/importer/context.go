package importer

import (
	"content-porter/core/document"
	"content-porter/core/reconcile"
)

// Failure is a non-fatal per-record or per-field problem. It is a value
// appended to the result, never a thrown error, so a large batch survives
// its bad records.
type Failure struct {
	// Error describes what went wrong.
	Error string `json:"error"`

	// Data is a snapshot of the offending input.
	Data any `json:"data,omitempty"`

	// Path locates the problem inside the payload, when known.
	Path string `json:"path,omitempty"`
}

// Result is the outcome of one import run.
type Result struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`

	// Failures are the non-fatal per-record problems collected during
	// processing.
	Failures []Failure `json:"failures"`

	// Errors are structural payload problems; when present nothing was
	// written.
	Errors []document.ValidationError `json:"errors,omitempty"`

	// Plan is the write-free outcome of a dry run.
	Plan *reconcile.Plan `json:"plan,omitempty"`
}

// Context is the per-run mutable state of one import: what was created and
// updated, the logical-identity to document-identity map, and the collected
// failures. It is owned by a single processor run.
type Context struct {
	created   map[string]struct{}
	updated   map[string]struct{}
	skipped   map[string]struct{}
	documents map[string]string
	failures  []Failure
}

func newContext() *Context {
	return &Context{
		created:   make(map[string]struct{}),
		updated:   make(map[string]struct{}),
		skipped:   make(map[string]struct{}),
		documents: make(map[string]string),
	}
}

// recordDocument maps a logical identity to its store document identity so
// later records in the same run (e.g. a referrer of an already-imported
// relation target) reuse it without a store query.
func (c *Context) recordDocument(contentType, idValue, documentID string) {
	c.documents[identityKey(contentType, idValue)] = documentID
}

// lookupDocument returns the document identity handled earlier in this run
// for a logical identity, if any.
func (c *Context) lookupDocument(contentType, idValue string) (string, bool) {
	id, ok := c.documents[identityKey(contentType, idValue)]
	return id, ok
}

// markCreated counts a document as created once, no matter how many locale
// or status variants of it the payload carries.
func (c *Context) markCreated(documentID string) bool {
	if _, ok := c.created[documentID]; ok {
		return false
	}
	c.created[documentID] = struct{}{}
	return true
}

// markUpdated counts a document as updated once. A document already counted
// as created stays created.
func (c *Context) markUpdated(documentID string) bool {
	if _, ok := c.created[documentID]; ok {
		return false
	}
	if _, ok := c.updated[documentID]; ok {
		return false
	}
	c.updated[documentID] = struct{}{}
	return true
}

// markSkipped counts a logical record as skipped once across its variants.
// It reports whether this was the first skip for the record.
func (c *Context) markSkipped(contentType, idValue string) bool {
	key := identityKey(contentType, idValue)
	if _, ok := c.skipped[key]; ok {
		return false
	}
	c.skipped[key] = struct{}{}
	return true
}

// unskip removes a record from the skipped bucket. A record that had one
// locale skipped and another written counts as updated, not both.
func (c *Context) unskip(contentType, idValue string) {
	delete(c.skipped, identityKey(contentType, idValue))
}

// wasCreated reports whether the document was created in this run.
func (c *Context) wasCreated(documentID string) bool {
	_, ok := c.created[documentID]
	return ok
}

// handled reports whether any variant of the document was touched this run.
func (c *Context) handled(documentID string) bool {
	if _, ok := c.created[documentID]; ok {
		return true
	}
	_, ok := c.updated[documentID]
	return ok
}

func (c *Context) fail(f Failure) {
	c.failures = append(c.failures, f)
}

func identityKey(contentType, idValue string) string {
	return contentType + "|" + idValue
}
