package checks

import (
	"content-porter/core/schema"
)

// IdentifierProblem reports a content type whose identifier configuration
// would make export or import fail.
type IdentifierProblem struct {
	ContentType string `json:"contentType"`
	Error       string `json:"error"`
}

// CheckIdentifiers validates the identifier configuration of every content
// type in the registry. An empty result means every type can be matched by
// a natural identifier.
func CheckIdentifiers(reg *schema.Registry) []IdentifierProblem {
	var problems []IdentifierProblem
	for _, contentType := range reg.ContentTypes() {
		sch, err := reg.Get(contentType)
		if err != nil {
			problems = append(problems, IdentifierProblem{ContentType: contentType, Error: err.Error()})
			continue
		}
		if sch.IsSingleType() {
			continue
		}
		if _, err := schema.ResolveIdentifierField(sch); err != nil {
			problems = append(problems, IdentifierProblem{ContentType: contentType, Error: err.Error()})
		}
	}
	return problems
}
