package clinical

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports field-level problems with submitted form data.
// Nothing is written to the store when it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks the invariants every stored entry must satisfy.
func Validate(form FormData) error {
	fields := make(map[string]string)

	if form.ShiftDate.IsZero() {
		fields["shiftDate"] = "shift date is required"
	}
	if strings.TrimSpace(form.Notes) == "" {
		fields["notes"] = "notes are required"
	}
	for _, group := range []struct {
		name string
		refs []ItemRef
	}{
		{"medications", form.Medications},
		{"devices", form.Devices},
		{"procedures", form.Procedures},
	} {
		for _, ref := range group.refs {
			if ref.ConfidenceLevel != "" && !ref.ConfidenceLevel.Valid() {
				fields[group.name] = fmt.Sprintf("unknown confidence level %q", ref.ConfidenceLevel)
				break
			}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
