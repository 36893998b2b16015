package reconcile

// Result is the reconciliation outcome for a single logical record,
// identified by its natural-identifier value within a content type.
type Result struct {
	// ContentType is the owning content-type UID.
	ContentType string `json:"contentType"`

	// Key is the record's identifier-field value.
	Key string `json:"key"`

	// PayloadPresent indicates the record appears in the interchange
	// document.
	PayloadPresent bool `json:"payload_present"`

	// DraftPresent indicates a draft variant exists in the store.
	DraftPresent bool `json:"draft_present"`

	// PublishedPresent indicates a published variant exists in the store.
	PublishedPresent bool `json:"published_present"`

	// Mismatch describes scalar fields whose payload and store values
	// differ, e.g. "title: payload=New store=Old".
	Mismatch []string `json:"mismatch"`
}

// ActionType classifies a planned import action.
type ActionType string

const (
	// ActionCreate means the record does not exist in the store yet.
	ActionCreate ActionType = "create"
	// ActionUpdate means the record exists and the policy would rewrite it.
	ActionUpdate ActionType = "update"
	// ActionSkip means the record exists and the policy would leave it.
	ActionSkip ActionType = "skip"
)

// Action is one planned import operation.
type Action struct {
	// Type specifies what the import would do.
	Type ActionType `json:"type"`

	// ContentType is the owning content-type UID.
	ContentType string `json:"contentType"`

	// Key is the record's identifier-field value.
	Key string `json:"key"`

	// Reason explains the decision.
	Reason string `json:"reason"`
}

// Summary provides aggregate counts for a plan.
type Summary struct {
	// TotalRecords is the number of unique logical records considered.
	TotalRecords int `json:"total_records"`

	// MissingInStore counts payload records with no store counterpart.
	MissingInStore int `json:"missing_in_store"`

	// OnlyInStore counts store records absent from the payload.
	OnlyInStore int `json:"only_in_store"`

	// Mismatches counts records with field discrepancies.
	Mismatches int `json:"mismatches"`

	// Creates, Updates and Skips count the planned actions by type.
	Creates int `json:"creates"`
	Updates int `json:"updates"`
	Skips   int `json:"skips"`
}

// Plan contains reconciliation results and the derived actions.
type Plan struct {
	// Results contains per-record reconciliation data.
	Results []Result `json:"results"`

	// Actions contains the planned import operations.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary Summary `json:"summary"`
}

// Options controls plan derivation.
type Options struct {
	// ExistingAction is the policy the import would run with
	// (warn, update, skip). Warn plans as skip.
	ExistingAction string
}
