package importer

import (
	"fmt"

	"content-porter/core/document"
)

// ExistingAction decides what happens when an incoming record matches an
// existing store record.
type ExistingAction string

const (
	// ActionWarn leaves the record untouched and surfaces a non-fatal
	// warning failure entry.
	ActionWarn ExistingAction = "warn"
	// ActionUpdate applies the incoming changes.
	ActionUpdate ExistingAction = "update"
	// ActionSkip leaves the record untouched.
	ActionSkip ExistingAction = "skip"
)

// Options controls one import run.
type Options struct {
	// ContentType restricts the import to a single content type from the
	// payload. Empty imports everything the payload carries.
	ContentType string `json:"contentType,omitempty"`

	// Format declares the payload format. Only document.FormatJSON is
	// parsed by the engine.
	Format string `json:"format,omitempty"`

	// ExistingAction selects the policy for records that already exist.
	ExistingAction ExistingAction `json:"existingAction,omitempty"`

	// IgnoreMissingRelations nulls unresolvable relations instead of
	// failing the containing record.
	IgnoreMissingRelations bool `json:"ignoreMissingRelations,omitempty"`

	// AllowLocaleUpdates permits adding new locale variants to a record
	// that is otherwise skipped.
	AllowLocaleUpdates bool `json:"allowLocaleUpdates,omitempty"`

	// DisallowNewRelations restricts relation rehydration on skip/update
	// paths to targets that already exist or were processed earlier in the
	// run; anything else is treated as a missing relation.
	DisallowNewRelations bool `json:"disallowNewRelations,omitempty"`

	// DryRun plans the import against the store without writing.
	DryRun bool `json:"dryRun,omitempty"`
}

// normalized fills defaults and rejects unknown enum values.
func (o Options) normalized() (Options, error) {
	if o.Format == "" {
		o.Format = document.FormatJSON
	}
	if o.ExistingAction == "" {
		o.ExistingAction = ActionWarn
	}
	switch o.ExistingAction {
	case ActionWarn, ActionUpdate, ActionSkip:
	default:
		return o, fmt.Errorf("unknown existingAction %q", o.ExistingAction)
	}
	return o, nil
}
