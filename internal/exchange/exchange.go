// Package exchange implements full-catalog import and export: JSON backup
// and restore, and CSV in both directions. Imports are all-or-nothing: any
// parse failure surfaces a ParseError and leaves the store untouched.
package exchange

// ParseError reports malformed JSON or CSV input. When it is returned no
// state was mutated.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parsing import data: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
