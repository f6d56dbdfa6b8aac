package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error carries per-field validation messages so API clients can highlight
// the offending fields. Fields maps the request field name to its message.
type Error struct {
	Fields map[string]string
}

// Error renders the field messages in field-name order so the message is
// stable across runs.
func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}
