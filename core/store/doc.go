// Package store provides the content store abstraction the porter reads and
// writes through.
//
// A content record is stored as one row per (document, locale, status)
// variant. The store assigns every logical record an opaque document
// identity that is shared by its draft, published and localized variants;
// the record body itself is an attribute map serialized as JSON.
//
// # Implementations
//
//   - New: GORM-backed store (MySQL in production, SQLite for tests),
//     with dialect-aware JSON field querying for natural-identifier lookup.
//   - NewMemory: in-memory fake with the same semantics, used by engine
//     tests that don't need a database.
//
// # Media
//
// Uploaded files are tracked in a media table by content hash, file name
// and URL. The porter matches incoming media by hash first, then by name,
// and only downloads when neither matches.
//
// # Usage
//
//	db, _ := database.Connect(cfg.Database)
//	st, err := store.New(db)
//	entry, err := st.FindOne(ctx, "api::article", store.Query{
//	    Status: store.StatusPublished,
//	    Field:  "slug",
//	    Value:  "hello-world",
//	})
package store
