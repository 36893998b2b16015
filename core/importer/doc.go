// Package importer implements the import half of the porter engine.
//
// A run moves through a small state machine: validating (structural checks
// and identifier configuration, before any writes) then processing, ending
// in completed or error. Within processing, published versions are applied
// before draft versions for every logical record, so a draft never regresses
// a more current published state mid-run.
//
// Incoming records are matched against the store by their natural-identifier
// value, first through the run's own context (a relation target imported
// earlier in the same run is reused), then through a store query. Relation
// values are rehydrated from identifier values back to store document
// identities; media fields are matched by content hash, then file name, and
// only downloaded when neither matches.
//
// Failures are values, not exceptions: a missing relation or a failed media
// fetch degrades the record or field and is appended to the failure list,
// and the run continues. Only configuration and structural validation errors
// abort a run, and both surface before the first write.
//
// At most one background import may be active per process; a second request
// fails immediately with ErrImportInProgress rather than queuing.
package importer
