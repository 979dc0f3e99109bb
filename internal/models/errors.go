package models

import "fmt"

// SchemaError reports a malformed or duplicate cut definition, or a cut that
// references a field the dataset does not have.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "supercuts: " + e.Reason
	}
	return fmt.Sprintf("supercuts: %s: %s", e.Field, e.Reason)
}

// ConfigurationError reports missing or unusable normalization metadata.
type ConfigurationError struct {
	Identifier string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	if e.Identifier == "" {
		return "configuration: " + e.Reason
	}
	return fmt.Sprintf("configuration: %s: %s", e.Identifier, e.Reason)
}

// DataSourceError reports an unreadable input or an absent column.
type DataSourceError struct {
	Source string
	Field  string
	Err    error
}

func (e *DataSourceError) Error() string {
	msg := "data source"
	if e.Source != "" {
		msg += " " + e.Source
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": column %q", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}
