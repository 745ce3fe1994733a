// Package engine implements incremental geocoding over a table.Store: it
// selects rows that still lack geographic output, renders provider queries
// from a template, calls a throttled provider, and encodes results back into
// row fields.
package engine

import (
	"fmt"
	"regexp"

	"github.com/sells-group/geocode-cli/internal/table"
)

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// MissingFieldError reports a template placeholder with no matching row field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("engine: row has no field %q referenced by template", e.Field)
}

// RenderQuery substitutes every {field} placeholder in the template with the
// row's value for that field. A field that is present but NULL renders as the
// empty string; a field absent from the row is a MissingFieldError. No
// escaping is applied; that is the provider's concern.
func RenderQuery(template string, row table.Row) (string, error) {
	var missing *MissingFieldError
	out := placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		field := m[1 : len(m)-1]
		v, ok := row[field]
		if !ok {
			if missing == nil {
				missing = &MissingFieldError{Field: field}
			}
			return m
		}
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
	if missing != nil {
		return "", missing
	}
	return out, nil
}
