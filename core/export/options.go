package export

// Depth bounds for relation traversal.
const (
	MinDepth     = 1
	MaxDepth     = 20
	DefaultDepth = 5
)

// Options selects what to export and how far to follow relations.
type Options struct {
	// ContentType restricts the export to a single content type. Empty
	// exports every registered content type.
	ContentType string `json:"contentType,omitempty"`

	// Filter restricts root records to those whose attribute equals the
	// given value. Applied to the initial selection only, never to
	// relation-discovered records.
	FilterField string `json:"filterField,omitempty"`
	FilterValue any    `json:"filterValue,omitempty"`

	// Sort orders root records by an attribute, ascending.
	Sort string `json:"sort,omitempty"`

	// DocumentIDs is an allow-list of document identities to export.
	DocumentIDs []string `json:"documentIds,omitempty"`

	// ExportAllLocales exports every locale variant; otherwise only the
	// default locale travels.
	ExportAllLocales bool `json:"exportAllLocales,omitempty"`

	// ExportRelations replaces relation fields with identifier values
	// instead of dropping them.
	ExportRelations bool `json:"exportRelations,omitempty"`

	// DeepPopulateRelations queues related records for export in later
	// traversal passes.
	DeepPopulateRelations bool `json:"deepPopulateRelations,omitempty"`

	// DeepPopulateComponentRelations also flattens relations found inside
	// components and dynamic zones. When false those are nulled to bound
	// output size without disabling top-level relation export.
	DeepPopulateComponentRelations bool `json:"deepPopulateComponentRelations,omitempty"`

	// Depth caps the number of breadth-first traversal passes (1-20).
	Depth int `json:"maxDepth,omitempty"`
}

// normalized clamps the traversal depth into its allowed range.
func (o Options) normalized() Options {
	if o.Depth == 0 {
		o.Depth = DefaultDepth
	}
	if o.Depth < MinDepth {
		o.Depth = MinDepth
	}
	if o.Depth > MaxDepth {
		o.Depth = MaxDepth
	}
	return o
}
