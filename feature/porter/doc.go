// Package porter exposes the content export/import engine over HTTP.
//
// It wires the export processor, the background import runner and the
// reconciliation engine into one service, and registers the routes:
//
//   - POST /export: produce an interchange document
//   - POST /import: start a background import (single-flight)
//   - GET  /import/progress: poll the active or last import run
//   - POST /import/plan: dry-run a document against the store
//
// Import options travel as query parameters so the request body stays a
// plain interchange document that can be piped from an export unchanged.
package porter
