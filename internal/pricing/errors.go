package pricing

import "fmt"

// TypeError reports an input with the wrong shape: a missing record, a
// material with no resolvable cost source, or a non-numeric value where a
// number is required. It is a precondition violation, never an expected
// runtime condition.
type TypeError struct {
	Field string
	Msg   string
}

func (e *TypeError) Error() string {
	if e.Field == "" {
		return "pricing: " + e.Msg
	}
	return fmt.Sprintf("pricing: %s: %s", e.Field, e.Msg)
}

// RangeError reports a numerically out-of-domain input: negative hours, a
// non-positive quantity, or a retail price below its own cost basis.
type RangeError struct {
	Field string
	Msg   string
}

func (e *RangeError) Error() string {
	if e.Field == "" {
		return "pricing: " + e.Msg
	}
	return fmt.Sprintf("pricing: %s: %s", e.Field, e.Msg)
}

func newTypeError(field, format string, args ...any) *TypeError {
	return &TypeError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

func newRangeError(field, format string, args ...any) *RangeError {
	return &RangeError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// prefixField rewrites the Field of an engine error so that errors raised
// while pricing one entry of an array-shaped input name the entry's index,
// e.g. "processes[2].laborHours".
func prefixField(err error, prefix string) error {
	switch e := err.(type) {
	case *TypeError:
		return &TypeError{Field: joinField(prefix, e.Field), Msg: e.Msg}
	case *RangeError:
		return &RangeError{Field: joinField(prefix, e.Field), Msg: e.Msg}
	default:
		return err
	}
}

func joinField(prefix, field string) string {
	if field == "" {
		return prefix
	}
	return prefix + "." + field
}
