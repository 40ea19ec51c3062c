package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Collection carries multiple taxonomy errors in discovery order. It is the
// shape raised by batch validation: every violation found in one pass, never
// just the first.
type Collection struct {
	message string
	errs    []*Error
}

// NewCollection wraps the given errors, preserving their order. The message
// summarizes the count.
func NewCollection(errs []*Error) *Collection {
	copied := make([]*Error, len(errs))
	copy(copied, errs)
	return &Collection{
		message: fmt.Sprintf("Found %d error(s)", len(copied)),
		errs:    copied,
	}
}

// WithMessage overrides the auto-generated summary message.
func (c *Collection) WithMessage(message string) *Collection {
	if message != "" {
		c.message = message
	}
	return c
}

// Code returns the fixed aggregate code.
func (c *Collection) Code() string { return CodeMultipleValidation }

// Message returns the summary message.
func (c *Collection) Message() string { return c.message }

// Errors returns the contained errors in discovery order.
func (c *Collection) Errors() []*Error {
	out := make([]*Error, len(c.errs))
	copy(out, c.errs)
	return out
}

// ErrorCount returns the number of contained errors.
func (c *Collection) ErrorCount() int { return len(c.errs) }

// Error implements the error interface.
func (c *Collection) Error() string { return c.Format(false) }

// Format renders one line per contained error, each starting with its code.
// When includeDetails is set, a flattened detail map follows each line.
func (c *Collection) Format(includeDetails bool) string {
	if len(c.errs) == 0 {
		return "No validation errors"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d validation error(s):", len(c.errs))
	for i, e := range c.errs {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %d. [%s]", i+1, e.Code())
		if e.FieldName() != "" {
			fmt.Fprintf(&b, " Field '%s':", e.FieldName())
		}
		b.WriteString(" " + e.Message())
		if includeDetails && len(e.details) > 0 {
			fmt.Fprintf(&b, "\n     Details: %s", flattenDetails(e.details))
		}
	}
	return b.String()
}

// ToExternalForm nests every contained error's external form under
// details.errors.
func (c *Collection) ToExternalForm() map[string]any {
	nested := make([]map[string]any, len(c.errs))
	for i, e := range c.errs {
		nested[i] = e.ToExternalForm()
	}
	return map[string]any{
		"error_code": CodeMultipleValidation,
		"message":    c.message,
		"field_name": nil,
		"details": map[string]any{
			"error_count": len(c.errs),
			"errors":      nested,
		},
	}
}

// ToJSON renders the external form as JSON.
func (c *Collection) ToJSON() ([]byte, error) {
	data, err := json.Marshal(c.ToExternalForm())
	if err != nil {
		return nil, NewSerialization("failed to serialize error collection to JSON", "to_json", err)
	}
	return data, nil
}
