package schema

// Fallback order when no identifier field is configured. These names are
// likely to be environment-independent, which is what makes a field usable
// as a cross-environment join key.
var fallbackFields = []string{"uid", "name", "title"}

// ResolveIdentifierField returns the natural-identifier field for a schema.
//
// A configured field is validated: it must exist, a uid-typed field must be
// required, and any other scalar must be both required and unique. Without
// configuration the first present of uid/name/title wins, else the store's
// internal id. Callers must not export internal-id identities (they are not
// portable); see RelationExportable.
func ResolveIdentifierField(s *Schema) (string, error) {
	if s.IdentifierField != "" {
		attr, ok := s.Attribute(s.IdentifierField)
		if !ok {
			return "", &ConfigurationError{
				ContentType: s.UID,
				Field:       s.IdentifierField,
				Reason:      "is not an attribute of this content type",
			}
		}
		if err := validateIdentifierAttribute(s, attr); err != nil {
			return "", err
		}
		return s.IdentifierField, nil
	}

	for _, name := range fallbackFields {
		if _, ok := s.Attribute(name); ok {
			return name, nil
		}
	}

	return InternalIDField, nil
}

// FallbackIdentifierField resolves the identifier field without validating
// the configuration. Single-type content holds at most one record, so the
// strict required/unique checks are skipped for it.
func FallbackIdentifierField(s *Schema) string {
	if s.IdentifierField != "" {
		if _, ok := s.Attribute(s.IdentifierField); ok {
			return s.IdentifierField
		}
	}
	for _, name := range fallbackFields {
		if _, ok := s.Attribute(name); ok {
			return name
		}
	}
	return InternalIDField
}

// RelationExportable reports whether the schema's records can participate in
// relation export. Content types whose identifier falls back to the internal
// id have no portable identity and are excluded from relation traversal.
func RelationExportable(s *Schema) bool {
	field, err := ResolveIdentifierField(s)
	if err != nil {
		return false
	}
	return field != InternalIDField
}

func validateIdentifierAttribute(s *Schema, attr Attribute) error {
	if attr.Kind != KindScalar {
		return &ConfigurationError{
			ContentType: s.UID,
			Field:       attr.Name,
			Reason:      "must be a scalar attribute",
		}
	}
	if attr.Type == ScalarUID {
		// uid values are unique by construction, required is still needed
		// so every record carries an identity.
		if !attr.Required {
			return &ConfigurationError{
				ContentType: s.UID,
				Field:       attr.Name,
				Reason:      "is a uid attribute but not marked required",
			}
		}
		return nil
	}
	if !attr.Required || !attr.Unique {
		return &ConfigurationError{
			ContentType: s.UID,
			Field:       attr.Name,
			Reason:      "must be marked both required and unique",
		}
	}
	return nil
}
