// Package errors provides the closed error taxonomy used across the task
// manager core. Every failure carries a human-readable message, a stable
// machine-readable code, an optional field name and a detail map so callers
// can branch on code first and kind second.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Kind identifies one member of the closed taxonomy.
type Kind int

const (
	KindValidation Kind = iota
	KindFieldValidation
	KindStateValidation
	KindDuplicateEntity
	KindEntityNotFound
	KindInvalidTransition
	KindDateRange
	KindOwnership
	KindSerialization
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindFieldValidation:
		return "field_validation"
	case KindStateValidation:
		return "state_validation"
	case KindDuplicateEntity:
		return "duplicate_entity"
	case KindEntityNotFound:
		return "entity_not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindDateRange:
		return "date_range"
	case KindOwnership:
		return "ownership"
	case KindSerialization:
		return "serialization"
	default:
		return "unknown"
	}
}

// Default codes assigned by the constructors. Call sites override them with
// WithCode when a more specific code applies.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeFieldValidation    = "FIELD_VALIDATION_ERROR"
	CodeStateValidation    = "STATE_VALIDATION_ERROR"
	CodeDuplicateEntity    = "DUPLICATE_ENTITY"
	CodeEntityNotFound     = "ENTITY_NOT_FOUND"
	CodeInvalidTransition  = "INVALID_STATE_TRANSITION"
	CodeDateRange          = "DATE_VALIDATION_ERROR"
	CodeOwnership          = "OWNERSHIP_ERROR"
	CodeSerialization      = "SERIALIZATION_ERROR"
	CodeMultipleValidation = "MULTIPLE_VALIDATION_ERRORS"
)

// Error is the single concrete type behind every taxonomy member. The kind is
// fixed at construction; codes and details are attached at the failure site
// and never mutated afterwards.
type Error struct {
	kind      Kind
	code      string
	message   string
	fieldName string
	details   map[string]any
}

// NewValidation creates a generic validation error.
func NewValidation(message string) *Error {
	return &Error{kind: KindValidation, code: CodeValidation, message: message, details: map[string]any{}}
}

// NewFieldValidation creates a single-field failure. The invalid value is
// recorded in details when known.
func NewFieldValidation(fieldName, message string, invalidValue any) *Error {
	e := &Error{
		kind:      KindFieldValidation,
		code:      CodeFieldValidation,
		message:   message,
		fieldName: fieldName,
		details:   map[string]any{},
	}
	if invalidValue != nil {
		e.details["invalid_value"] = invalidValue
	}
	return e
}

// NewStateValidation creates an illegal-state error. Empty state strings are
// omitted from details.
func NewStateValidation(message, currentState, attemptedState string) *Error {
	e := &Error{kind: KindStateValidation, code: CodeStateValidation, message: message, details: map[string]any{}}
	if currentState != "" {
		e.details["current_state"] = currentState
	}
	if attemptedState != "" {
		e.details["attempted_state"] = attemptedState
	}
	return e
}

// NewDuplicateEntity creates a duplicate-identifier error. The identifying
// keys are attached by the caller via WithDetail.
func NewDuplicateEntity(message string) *Error {
	return &Error{kind: KindDuplicateEntity, code: CodeDuplicateEntity, message: message, details: map[string]any{}}
}

// NewEntityNotFound creates a missing-entity error.
func NewEntityNotFound(message string) *Error {
	return &Error{kind: KindEntityNotFound, code: CodeEntityNotFound, message: message, details: map[string]any{}}
}

// NewInvalidTransition creates an illegal state-machine transition error.
func NewInvalidTransition(message, currentStatus, attemptedStatus string) *Error {
	e := &Error{kind: KindInvalidTransition, code: CodeInvalidTransition, message: message, details: map[string]any{}}
	if currentStatus != "" {
		e.details["current_status"] = currentStatus
	}
	if attemptedStatus != "" {
		e.details["attempted_status"] = attemptedStatus
	}
	return e
}

// NewDateRange creates a timestamp ordering or bounds error. The offending
// timestamp is recorded as text.
func NewDateRange(message, fieldName, invalidDate string) *Error {
	e := &Error{kind: KindDateRange, code: CodeDateRange, message: message, fieldName: fieldName, details: map[string]any{}}
	if invalidDate != "" {
		e.details["invalid_date"] = invalidDate
	}
	return e
}

// NewOwnership creates a non-owning-principal access error.
func NewOwnership(message, resourceType, resourceID, userID string) *Error {
	e := &Error{kind: KindOwnership, code: CodeOwnership, message: message, details: map[string]any{}}
	if resourceType != "" {
		e.details["resource_type"] = resourceType
	}
	if resourceID != "" {
		e.details["resource_id"] = resourceID
	}
	if userID != "" {
		e.details["user_id"] = userID
	}
	return e
}

// NewSerialization creates an external-representation failure. When a causing
// error is supplied its type name and a matching resolution hint are recorded.
func NewSerialization(message, operation string, cause error) *Error {
	e := &Error{kind: KindSerialization, code: CodeSerialization, message: message, details: map[string]any{}}
	if operation != "" {
		e.details["operation"] = operation
	}
	if cause != nil {
		errType, hint := classifySerializationCause(cause)
		e.details["original_error"] = cause.Error()
		e.details["error_type"] = errType
		e.details["resolution_hint"] = hint
	}
	return e
}

// classifySerializationCause maps a causing error to a type label and a
// resolution hint a presentation layer can show verbatim.
func classifySerializationCause(cause error) (errType, hint string) {
	var unsupportedValue *json.UnsupportedValueError
	var unsupportedType *json.UnsupportedTypeError
	switch {
	case stderrors.As(cause, &unsupportedValue):
		return "UnsupportedValueError", "Circular reference detected between objects; remove the cycle before serializing"
	case stderrors.As(cause, &unsupportedType):
		return "UnsupportedTypeError", "Ensure all field values are JSON-serializable types"
	default:
		if strings.Contains(cause.Error(), "missing") || strings.Contains(cause.Error(), "required") {
			return fmt.Sprintf("%T", cause), "Check that objects are fully initialized and not missing required attributes"
		}
		return fmt.Sprintf("%T", cause), fmt.Sprintf("Check the underlying %T and the data being serialized", cause)
	}
}

// WithCode overrides the default code. Codes are stable, upper-snake and
// never empty; an empty override is ignored.
func (e *Error) WithCode(code string) *Error {
	if code != "" {
		e.code = code
	}
	return e
}

// WithField attaches the field name the error relates to.
func (e *Error) WithField(fieldName string) *Error {
	e.fieldName = fieldName
	return e
}

// WithDetail adds one detail entry.
func (e *Error) WithDetail(key string, value any) *Error {
	e.details[key] = value
	return e
}

// WithDetails merges the given entries into the detail map.
func (e *Error) WithDetails(details map[string]any) *Error {
	for k, v := range details {
		e.details[k] = v
	}
	return e
}

// Kind returns the taxonomy member this error belongs to.
func (e *Error) Kind() Kind { return e.kind }

// Code returns the machine-readable error code.
func (e *Error) Code() string { return e.code }

// Message returns the human-readable message.
func (e *Error) Message() string { return e.message }

// FieldName returns the associated field name, or "" when none applies.
func (e *Error) FieldName() string { return e.fieldName }

// Details returns a copy of the detail map.
func (e *Error) Details() map[string]any {
	out := make(map[string]any, len(e.details))
	for k, v := range e.details {
		out[k] = v
	}
	return out
}

// Detail returns a single detail value.
func (e *Error) Detail(key string) (any, bool) {
	v, ok := e.details[key]
	return v, ok
}

// Error implements the error interface. The rendering always includes the
// code and, when present, the field name and a flattened detail summary.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("[" + e.code + "]")
	if e.fieldName != "" {
		b.WriteString(" Field '" + e.fieldName + "':")
	}
	b.WriteString(" " + e.message)
	if len(e.details) > 0 {
		b.WriteString(" (Details: " + flattenDetails(e.details) + ")")
	}
	return b.String()
}

// flattenDetails renders a detail map as "k=v, ..." with sorted keys so the
// output is deterministic.
func flattenDetails(details map[string]any) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, ", ")
}

// ToExternalForm converts the error to a plain key-value representation. The
// mapping is stable and complete: every field is present even when empty.
func (e *Error) ToExternalForm() map[string]any {
	var field any
	if e.fieldName != "" {
		field = e.fieldName
	}
	return map[string]any{
		"error_code": e.code,
		"message":    e.message,
		"field_name": field,
		"details":    e.Details(),
	}
}

// ToJSON renders the external form as JSON.
func (e *Error) ToJSON() ([]byte, error) {
	data, err := json.Marshal(e.ToExternalForm())
	if err != nil {
		return nil, NewSerialization("failed to serialize error to JSON", "to_json", err)
	}
	return data, nil
}

// As extracts a taxonomy error from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code carried by err, or "" when err is not a taxonomy
// member or a collection.
func CodeOf(err error) string {
	if e, ok := As(err); ok {
		return e.Code()
	}
	var c *Collection
	if stderrors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// IsKind reports whether err is a taxonomy error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.kind == kind
}
