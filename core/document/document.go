// Package document defines the serialized interchange format the porter
// reads and writes, and its structural validation.
package document

import (
	"encoding/json"
	"fmt"
)

// Version is the interchange format version this build reads and writes.
const Version = 3

// FormatJSON is the only payload format the engine parses itself; anything
// else is expected to be converted by the caller before import.
const FormatJSON = "json"

// FlatRecord is a flattened record: store-internal fields stripped, relation
// fields holding identifier values, components nested inline.
type FlatRecord = map[string]any

// VersionedEntry groups the draft and published variants of one logical
// record, keyed by locale. Draft is omitted when it matches published.
type VersionedEntry struct {
	Draft     map[string]FlatRecord `json:"draft,omitempty"`
	Published map[string]FlatRecord `json:"published,omitempty"`
}

// Document is the top-level interchange document.
type Document struct {
	Version int                         `json:"version"`
	Data    map[string][]VersionedEntry `json:"data"`
}

// MediaInfo is the exported shape of a media field value. Only metadata and
// a URL travel, never binary content.
type MediaInfo struct {
	URL             string `json:"url"`
	Name            string `json:"name"`
	Hash            string `json:"hash"`
	AlternativeText string `json:"alternativeText,omitempty"`
	Caption         string `json:"caption,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
	UpdatedAt       string `json:"updatedAt,omitempty"`
	PublishedAt     string `json:"publishedAt,omitempty"`
}

// ValidationError reports a structural problem with an interchange payload.
// Validation errors are fatal to a run and are collected before any writes.
type ValidationError struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Parse decodes and structurally validates a raw payload. It returns either
// a usable document or the list of validation errors, never both.
func Parse(raw []byte, format string) (*Document, []ValidationError) {
	if format != FormatJSON {
		return nil, []ValidationError{{Message: fmt.Sprintf("unsupported payload format %q", format)}}
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, []ValidationError{{Message: fmt.Sprintf("payload is not valid JSON: %v", err)}}
	}

	var errs []ValidationError
	if doc.Version != Version {
		errs = append(errs, ValidationError{
			Path:    "version",
			Message: fmt.Sprintf("unsupported document version %d, expected %d", doc.Version, Version),
		})
	}
	if doc.Data == nil {
		errs = append(errs, ValidationError{Path: "data", Message: "missing required top-level data"})
	}
	for contentType, entries := range doc.Data {
		for i, entry := range entries {
			if len(entry.Draft) == 0 && len(entry.Published) == 0 {
				errs = append(errs, ValidationError{
					Path:    fmt.Sprintf("data.%s[%d]", contentType, i),
					Message: "entry has neither draft nor published versions",
				})
			}
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return &doc, nil
}

// MediaInfoFromValue converts a decoded media field value back into its
// typed shape. Returns false when the value does not look like media
// metadata.
func MediaInfoFromValue(value any) (MediaInfo, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return MediaInfo{}, false
	}
	str := func(key string) string {
		if s, ok := m[key].(string); ok {
			return s
		}
		return ""
	}
	info := MediaInfo{
		URL:             str("url"),
		Name:            str("name"),
		Hash:            str("hash"),
		AlternativeText: str("alternativeText"),
		Caption:         str("caption"),
		CreatedAt:       str("createdAt"),
		UpdatedAt:       str("updatedAt"),
		PublishedAt:     str("publishedAt"),
	}
	if info.URL == "" && info.Name == "" && info.Hash == "" {
		return MediaInfo{}, false
	}
	return info, true
}
