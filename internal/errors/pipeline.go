package errors

import "fmt"

// Sentinel errors for the pipeline error taxonomy. Every EnhancedError built by the
// constructors below wraps one of them, so callers may use either errors.Is or IsCategory.
var (
	ErrParse          = NewStd("parse error")
	ErrSchemaMismatch = NewStd("schema mismatch")
	ErrSchema         = NewStd("schema error")
	ErrIO             = NewStd("io error")
)

// ParseError reports that a source could not be read or parsed as structured data.
func ParseError(err error, source, path string) *EnhancedError {
	return New(fmt.Errorf("%w: %s (%s): %w", ErrParse, source, path, err)).
		Component("loader").
		Category(CategoryFileParsing).
		Context("source", source).
		Context("path", path).
		Build()
}

// SchemaMismatchError reports a column count that differs from the canonical schema.
func SchemaMismatchError(table string, want, got int) *EnhancedError {
	return New(fmt.Errorf("%w: %s has %d columns, canonical schema has %d", ErrSchemaMismatch, table, got, want)).
		Component("normalize").
		Category(CategorySchemaMismatch).
		Context("table", table).
		Context("expected_columns", want).
		Context("actual_columns", got).
		Build()
}

// SchemaError reports a column a stage needs but its input does not have.
func SchemaError(component, table, column string) *EnhancedError {
	return New(fmt.Errorf("%w: %s has no column %q", ErrSchema, table, column)).
		Component(component).
		Category(CategorySchema).
		Context("table", table).
		Context("column", column).
		Build()
}

// IOError reports that an output destination could not be written.
func IOError(err error, path string) *EnhancedError {
	return New(fmt.Errorf("%w: %s: %w", ErrIO, path, err)).
		Component("output").
		Category(CategoryFileIO).
		Context("path", path).
		Build()
}
