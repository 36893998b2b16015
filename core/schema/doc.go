// Package schema provides content-type schema introspection for the porter.
//
// It loads content-type definitions into a Registry and classifies each
// attribute by kind (scalar, relation, component, dynamic zone, media). The
// kind set is closed: code that walks a schema switches exhaustively over
// Kind, so adding a new kind is a compile-time decision point rather than
// open-ended type inspection.
//
// # Identifier Resolution
//
// Records are matched across environments by a natural identifier field, not
// by the store's surrogate keys (those are not stable between environments).
// ResolveIdentifierField returns the field to use for a schema:
//
//  1. The explicitly configured field, validated (must exist; a uid-typed
//     field must be required; any other scalar must be required and unique).
//  2. Otherwise the first present of: "uid", "name", "title".
//  3. Otherwise the store's internal id. An internal-id identifier is never
//     portable, so such content types are excluded from relation export.
//
// Misconfiguration surfaces as a ConfigurationError before any data moves.
//
// # Usage
//
//	reg := schema.NewRegistry()
//	if err := reg.LoadDir("./schemas"); err != nil { ... }
//	s, _ := reg.Get("api::article")
//	field, err := schema.ResolveIdentifierField(s)
package schema
