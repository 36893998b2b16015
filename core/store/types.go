package store

import (
	"context"
	"time"
)

// Status distinguishes the draft and published variants of a record.
type Status string

const (
	// StatusDraft is the working version of a record.
	StatusDraft Status = "draft"
	// StatusPublished is the live version of a record.
	StatusPublished Status = "published"
)

// DefaultLocale is the locale assigned to records of non-localized content
// types.
const DefaultLocale = "default"

// Entry is one (document, locale, status) variant of a content record.
type Entry struct {
	// ID is the store's surrogate key for this row. Never exported.
	ID uint `json:"id"`

	// DocumentID is the opaque document identity shared by all variants of
	// the same logical record. Stable within one store, not across stores.
	DocumentID string `json:"documentId"`

	// ContentType is the owning content-type UID.
	ContentType string `json:"contentType"`

	// Locale is the variant locale, DefaultLocale when not localized.
	Locale string `json:"locale"`

	// Status marks the variant as draft or published.
	Status Status `json:"status"`

	// Data is the attribute map. Relation fields hold target document IDs,
	// media fields hold media document IDs, components are nested maps.
	Data map[string]any `json:"data"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// Media is an uploaded file tracked by the store.
type Media struct {
	ID              uint      `json:"id"`
	DocumentID      string    `json:"documentId"`
	Name            string    `json:"name"`
	Hash            string    `json:"hash"`
	URL             string    `json:"url"`
	AlternativeText string    `json:"alternativeText,omitempty"`
	Caption         string    `json:"caption,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Query narrows a store lookup. Zero-value fields are ignored.
type Query struct {
	// Status restricts to draft or published variants.
	Status Status

	// Locale restricts to a single locale.
	Locale string

	// DocumentIDs restricts to the given document identities.
	DocumentIDs []string

	// Field/Value match a single attribute inside the record body, used for
	// natural-identifier lookup.
	Field string
	Value any

	// Sort is an attribute name to order by, ascending. Empty means the
	// store's insertion order.
	Sort string
}

// ErrNotFound is returned (wrapped) by FindOne when no row matches.
// FindMany returns an empty slice instead.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "record not found" }

// Store is the content store consumed by the export and import processors.
// It is specified at its interface boundary only; the porter never reaches
// into the query engine behind it.
type Store interface {
	// FindMany returns all variants of a content type matching the query.
	FindMany(ctx context.Context, contentType string, q Query) ([]*Entry, error)

	// FindOne returns the first variant matching the query, or an error
	// wrapping ErrNotFound.
	FindOne(ctx context.Context, contentType string, q Query) (*Entry, error)

	// Create inserts a new variant. A missing DocumentID is assigned by the
	// store. The stored entry is returned.
	Create(ctx context.Context, e *Entry) (*Entry, error)

	// Update rewrites the body and timestamps of an existing variant,
	// matched by (DocumentID, Locale, Status).
	Update(ctx context.Context, e *Entry) (*Entry, error)

	// FindMediaByHash returns the media with the given content hash, or nil.
	FindMediaByHash(ctx context.Context, hash string) (*Media, error)

	// FindMediaByName returns the media with the given file name, or nil.
	FindMediaByName(ctx context.Context, name string) (*Media, error)

	// FindMediaByDocumentID returns the media with the given document
	// identity, or nil.
	FindMediaByDocumentID(ctx context.Context, documentID string) (*Media, error)

	// CreateMedia inserts a new media row, assigning a DocumentID if empty.
	CreateMedia(ctx context.Context, m *Media) (*Media, error)
}
