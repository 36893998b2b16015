// Package reconcile diffs an interchange document against the live content
// store before anything is written.
//
// The engine builds two indices per content type, keyed by the natural
// identifier value: one from the payload, one from the store. It computes
// the union of keys, reports presence on each side and field mismatches,
// and derives a create/update/skip action plan from the configured existing-
// record policy. The plan is purely informational; applying it is the import
// processor's job.
//
// # Performance
//
// Store indices are loaded with one query per status, run concurrently, and
// can be cached with a TTL behind singleflight so repeated plan calls
// against a large store don't stampede it.
//
// # Usage
//
//	engine := reconcile.NewEngine(registry, st, 0)
//	plan, err := engine.Plan(ctx, doc, reconcile.Options{ExistingAction: "skip"})
package reconcile
