// Package export implements the export half of the porter engine.
//
// The processor walks the selected content types, pairs every draft record
// with its published counterpart, and serializes both through schema-aware
// flattening: components and dynamic zones are expanded inline, media fields
// are reduced to metadata plus an absolute URL, and relation fields are
// replaced by the related record's natural-identifier value so the output
// stays portable across environments.
//
// Relation traversal is breadth-first. Each pass drains a frontier of
// (content type, document) pairs discovered while flattening the previous
// pass, skipping identities already processed, and stops when the frontier
// empties or the configured depth is reached.
//
// Per-attribute failures degrade optimistically: the attribute is nulled and
// logged, the record and the run continue.
package export
