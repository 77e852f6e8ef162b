package metadata

import (
	"errors"
	"fmt"
)

var errInvalidUTF8 = errors.New("value is not valid UTF-8")

// ParseError reports a recognised comment whose value cannot be converted,
// such as a non-numeric TRACKNUMBER. It is scoped to a single source file.
type ParseError struct {
	Key   string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
