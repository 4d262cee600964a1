package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrNoRecord = errors.New("no record")
var ErrAlreadyExists = errors.New("entity already exists")

// ValidationError is returned before any write when an event aggregate breaks
// one of its rules. Errors maps a field name to a message.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f, e.Errors[f])
	}

	return "validation failed: " + strings.Join(parts, "; ")
}
