package schema

import (
	"errors"
	"fmt"
)

// ConfigurationError reports an unusable identifier-field configuration.
// It is fatal to the whole operation and is raised before any writes, so
// callers can distinguish a setup problem from a data failure.
type ConfigurationError struct {
	// ContentType is the schema the configuration belongs to.
	ContentType string

	// Field is the configured identifier field.
	Field string

	// Reason explains what is wrong with the configuration.
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("identifier configuration for %s: field %q %s", e.ContentType, e.Field, e.Reason)
}

// IsConfigurationError reports whether err is a ConfigurationError anywhere
// in its chain.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
