package leads

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrLeadNotFound is returned when a lead id is unknown.
	ErrLeadNotFound = errors.New("leads: lead not found")
	// ErrMissingRequired matches a ValidationError with missing fields.
	ErrMissingRequired = errors.New("leads: missing required fields")
	// ErrInvalidField matches a ValidationError with malformed values.
	ErrInvalidField = errors.New("leads: invalid field value")
	// ErrInvalidStatus is returned for an unknown status value.
	ErrInvalidStatus = errors.New("leads: invalid status")
	// ErrInvalidType is returned for an unknown lead type.
	ErrInvalidType = errors.New("leads: invalid lead type")
)

// ValidationError lists what is wrong with a submitted form.
type ValidationError struct {
	Missing []string          `json:"missing,omitempty"`
	Invalid map[string]string `json:"invalid,omitempty"`
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		keys := make([]string, 0, len(e.Invalid))
		for k := range e.Invalid {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		invalid := make([]string, 0, len(keys))
		for _, k := range keys {
			invalid = append(invalid, k+" "+e.Invalid[k])
		}
		parts = append(parts, "invalid fields: "+strings.Join(invalid, ", "))
	}
	return "leads: " + strings.Join(parts, "; ")
}

// Is lets errors.Is match the sentinel for each kind of problem present.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrMissingRequired:
		return len(e.Missing) > 0
	case ErrInvalidField:
		return len(e.Invalid) > 0
	}
	return false
}

func (e *ValidationError) empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}
