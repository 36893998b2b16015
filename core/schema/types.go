package schema

// Kind classifies a schema attribute. The set is closed; walkers switch
// exhaustively over it.
type Kind string

const (
	// KindScalar is a plain value attribute (string, number, boolean, ...).
	KindScalar Kind = "scalar"
	// KindRelation points at records of another content type.
	KindRelation Kind = "relation"
	// KindComponent nests a reusable component structure inline.
	KindComponent Kind = "component"
	// KindDynamicZone holds an ordered list of mixed component entries.
	KindDynamicZone Kind = "dynamiczone"
	// KindMedia references uploaded files.
	KindMedia Kind = "media"
)

// Scalar subtypes that carry identifier semantics.
const (
	// ScalarUID is a scalar subtype that is unique by construction.
	ScalarUID = "uid"
)

// InternalIDField is the store's surrogate key name. It is the last-resort
// identifier fallback and must never appear in exported payloads.
const InternalIDField = "id"

// Attribute describes a single schema attribute.
type Attribute struct {
	// Name is the attribute name within the content type.
	Name string `json:"name"`

	// Kind classifies the attribute (scalar, relation, component, ...).
	Kind Kind `json:"kind"`

	// Type is the scalar subtype (e.g. "string", "uid"). Empty for
	// non-scalar kinds.
	Type string `json:"type,omitempty"`

	// Target is the related content type (relation) or component
	// identifier (component). Empty otherwise.
	Target string `json:"target,omitempty"`

	// Multiple marks a to-many relation or multi-file media field.
	Multiple bool `json:"multiple,omitempty"`

	// Repeatable marks a repeatable component.
	Repeatable bool `json:"repeatable,omitempty"`

	// Components lists the allowed component identifiers of a dynamic zone.
	Components []string `json:"components,omitempty"`

	// Required marks the attribute as mandatory.
	Required bool `json:"required,omitempty"`

	// Unique marks the attribute as unique within the content type.
	Unique bool `json:"unique,omitempty"`
}

// Schema describes a content type: its identifier, kind, attribute list
// (ordered as declared) and optional identifier-field configuration.
type Schema struct {
	// UID is the globally unique content-type identifier, e.g. "api::article".
	UID string `json:"uid"`

	// CollectionKind is "collectionType" or "singleType". Single types hold
	// at most one record and skip identifier validation.
	CollectionKind string `json:"kind"`

	// IdentifierField is the explicitly configured natural-identifier field.
	// Empty means fall back to uid/name/title/internal id.
	IdentifierField string `json:"identifierField,omitempty"`

	// Attributes is the ordered attribute list.
	Attributes []Attribute `json:"attributes"`
}

// IsSingleType reports whether the content type holds at most one record.
func (s *Schema) IsSingleType() bool {
	return s.CollectionKind == "singleType"
}

// Attribute returns the named attribute, if present.
func (s *Schema) Attribute(name string) (Attribute, bool) {
	for _, a := range s.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// RelationTargets returns the content types this schema can reach through
// top-level relation attributes.
func (s *Schema) RelationTargets() []string {
	var targets []string
	for _, a := range s.Attributes {
		if a.Kind == KindRelation && a.Target != "" {
			targets = append(targets, a.Target)
		}
	}
	return targets
}
