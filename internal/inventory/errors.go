package inventory

import "fmt"

// ValidationError reports a rejected draft or group operation. When it is
// returned no state was mutated.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an operation against an item or group that no
// longer exists. When it is returned no state was mutated.
type NotFoundError struct {
	Kind string // "item" or "group"
	ID   int64
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}
