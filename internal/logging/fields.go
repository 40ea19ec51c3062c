package logging

import (
	"errors"

	apperrors "taskmanager-core/internal/errors"
)

// ErrorFields flattens an error into log fields. Validation errors carry
// their code, field name and details; anything else logs as plain text.
func ErrorFields(err error) []interface{} {
	if err == nil {
		return nil
	}

	var coll *apperrors.Collection
	if errors.As(err, &coll) {
		return []interface{}{
			"error", coll.Message(),
			"error_code", coll.Code(),
			"error_count", coll.ErrorCount(),
		}
	}

	appErr, ok := apperrors.As(err)
	if !ok {
		return []interface{}{"error", err.Error()}
	}

	fields := []interface{}{
		"error", appErr.Message(),
		"error_code", appErr.Code(),
	}
	if appErr.FieldName() != "" {
		fields = append(fields, "field_name", appErr.FieldName())
	}
	if details := appErr.Details(); len(details) > 0 {
		fields = append(fields, "details", details)
	}
	return fields
}
