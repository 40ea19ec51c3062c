package errors

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindValidation, "validation"},
		{KindFieldValidation, "field_validation"},
		{KindStateValidation, "state_validation"},
		{KindDuplicateEntity, "duplicate_entity"},
		{KindEntityNotFound, "entity_not_found"},
		{KindInvalidTransition, "invalid_transition"},
		{KindDateRange, "date_range"},
		{KindOwnership, "ownership"},
		{KindSerialization, "serialization"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestConstructorDefaults(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		wantKind Kind
		wantCode string
	}{
		{"validation", NewValidation("bad input"), KindValidation, CodeValidation},
		{"field validation", NewFieldValidation("title", "empty", nil), KindFieldValidation, CodeFieldValidation},
		{"state validation", NewStateValidation("bad state", "", ""), KindStateValidation, CodeStateValidation},
		{"duplicate entity", NewDuplicateEntity("dup"), KindDuplicateEntity, CodeDuplicateEntity},
		{"entity not found", NewEntityNotFound("gone"), KindEntityNotFound, CodeEntityNotFound},
		{"invalid transition", NewInvalidTransition("nope", "", ""), KindInvalidTransition, CodeInvalidTransition},
		{"date range", NewDateRange("bad date", "", ""), KindDateRange, CodeDateRange},
		{"ownership", NewOwnership("not yours", "", "", ""), KindOwnership, CodeOwnership},
		{"serialization", NewSerialization("boom", "", nil), KindSerialization, CodeSerialization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, tt.err.Kind())
			assert.Equal(t, tt.wantCode, tt.err.Code())
			assert.NotNil(t, tt.err.Details())
		})
	}
}

func TestNewFieldValidation_RecordsInvalidValue(t *testing.T) {
	err := NewFieldValidation("email", "bad address", "not-an-email")
	assert.Equal(t, "email", err.FieldName())
	v, ok := err.Detail("invalid_value")
	require.True(t, ok)
	assert.Equal(t, "not-an-email", v)

	// nil invalid values are omitted entirely
	err = NewFieldValidation("email", "bad address", nil)
	_, ok = err.Detail("invalid_value")
	assert.False(t, ok)
}

func TestNewStateValidation_OmitsEmptyStates(t *testing.T) {
	err := NewStateValidation("cannot archive", "todo", "archived")
	assert.Equal(t, map[string]any{
		"current_state":   "todo",
		"attempted_state": "archived",
	}, err.Details())

	err = NewStateValidation("cannot archive", "", "")
	assert.Empty(t, err.Details())
}

func TestNewOwnership_Details(t *testing.T) {
	err := NewOwnership("not the owner", "task_list", "Work", "alice")
	details := err.Details()
	assert.Equal(t, "task_list", details["resource_type"])
	assert.Equal(t, "Work", details["resource_id"])
	assert.Equal(t, "alice", details["user_id"])
}

func TestWithCode(t *testing.T) {
	err := NewValidation("msg").WithCode("CUSTOM_CODE")
	assert.Equal(t, "CUSTOM_CODE", err.Code())

	// empty override is ignored
	err = NewValidation("msg").WithCode("")
	assert.Equal(t, CodeValidation, err.Code())
}

func TestWithDetailChaining(t *testing.T) {
	err := NewValidation("msg").
		WithField("count").
		WithDetail("limit", 10).
		WithDetails(map[string]any{"got": 12, "hint": "reduce the count"})

	assert.Equal(t, "count", err.FieldName())
	assert.Equal(t, map[string]any{"limit": 10, "got": 12, "hint": "reduce the count"}, err.Details())
}

func TestDetails_ReturnsCopy(t *testing.T) {
	err := NewValidation("msg").WithDetail("k", "v")
	details := err.Details()
	details["k"] = "mutated"

	v, _ := err.Detail("k")
	assert.Equal(t, "v", v)
}

func TestError_Rendering(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "code and message only",
			err:  NewValidation("something went wrong"),
			want: "[VALIDATION_ERROR] something went wrong",
		},
		{
			name: "with field name",
			err:  NewFieldValidation("title", "cannot be empty", nil),
			want: "[FIELD_VALIDATION_ERROR] Field 'title': cannot be empty",
		},
		{
			name: "details sorted by key",
			err:  NewValidation("bad").WithDetail("zeta", 1).WithDetail("alpha", 2),
			want: "[VALIDATION_ERROR] bad (Details: alpha=2, zeta=1)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestToExternalForm(t *testing.T) {
	err := NewFieldValidation("title", "cannot be empty", "").WithDetail("min_length", 1)
	form := err.ToExternalForm()

	assert.Equal(t, CodeFieldValidation, form["error_code"])
	assert.Equal(t, "cannot be empty", form["message"])
	assert.Equal(t, "title", form["field_name"])
	details, ok := form["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, details["min_length"])

	// missing field name maps to nil, not ""
	form = NewValidation("msg").ToExternalForm()
	assert.Nil(t, form["field_name"])
}

func TestToJSON_RoundTrips(t *testing.T) {
	data, err := NewValidation("msg").WithDetail("k", "v").ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "VALIDATION_ERROR", decoded["error_code"])
}

func TestSerializationCauseClassification(t *testing.T) {
	t.Run("unsupported value", func(t *testing.T) {
		_, cause := json.Marshal(math.Inf(1))
		require.Error(t, cause)
		err := NewSerialization("boom", "to_json", cause)
		hint, _ := err.Detail("resolution_hint")
		errType, _ := err.Detail("error_type")
		assert.Equal(t, "UnsupportedValueError", errType)
		assert.Contains(t, hint, "Circular reference")
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, cause := json.Marshal(func() {})
		require.Error(t, cause)
		err := NewSerialization("boom", "to_json", cause)
		errType, _ := err.Detail("error_type")
		hint, _ := err.Detail("resolution_hint")
		assert.Equal(t, "UnsupportedTypeError", errType)
		assert.Contains(t, hint, "JSON-serializable")
	})

	t.Run("missing attribute text", func(t *testing.T) {
		cause := fmt.Errorf("object is missing a required field")
		err := NewSerialization("boom", "to_json", cause)
		hint, _ := err.Detail("resolution_hint")
		assert.Contains(t, hint, "fully initialized")
	})

	t.Run("operation recorded", func(t *testing.T) {
		err := NewSerialization("boom", "from_external_form", nil)
		op, ok := err.Detail("operation")
		require.True(t, ok)
		assert.Equal(t, "from_external_form", op)
	})
}

func TestAs(t *testing.T) {
	err := NewValidation("msg")
	wrapped := fmt.Errorf("context: %w", err)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, err, got)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(NewValidation("msg")))
	assert.Equal(t, CodeMultipleValidation, CodeOf(NewCollection([]*Error{NewValidation("a")})))
	assert.Equal(t, "", CodeOf(fmt.Errorf("plain")))
	assert.Equal(t, "", CodeOf(nil))
}

func TestIsKind(t *testing.T) {
	err := NewOwnership("not yours", "", "", "")
	assert.True(t, IsKind(err, KindOwnership))
	assert.False(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(fmt.Errorf("plain"), KindOwnership))
}

func TestCollection_MessageAndCount(t *testing.T) {
	coll := NewCollection([]*Error{NewValidation("a"), NewValidation("b")})
	assert.Equal(t, "Found 2 error(s)", coll.Message())
	assert.Equal(t, 2, coll.ErrorCount())
	assert.Equal(t, CodeMultipleValidation, coll.Code())

	coll.WithMessage("custom summary")
	assert.Equal(t, "custom summary", coll.Message())
}

func TestCollection_PreservesOrder(t *testing.T) {
	first := NewValidation("first")
	second := NewFieldValidation("email", "second", nil)
	third := NewValidation("third")

	coll := NewCollection([]*Error{first, second, third})
	errs := coll.Errors()
	require.Len(t, errs, 3)
	assert.Equal(t, "first", errs[0].Message())
	assert.Equal(t, "second", errs[1].Message())
	assert.Equal(t, "third", errs[2].Message())
}

func TestCollection_Format(t *testing.T) {
	coll := NewCollection([]*Error{
		NewFieldValidation("title", "cannot be empty", nil),
		NewValidation("broken").WithDetail("k", "v"),
	})

	plain := coll.Format(false)
	assert.Contains(t, plain, "Found 2 validation error(s):")
	assert.Contains(t, plain, "1. [FIELD_VALIDATION_ERROR] Field 'title': cannot be empty")
	assert.Contains(t, plain, "2. [VALIDATION_ERROR] broken")
	assert.NotContains(t, plain, "Details:")

	detailed := coll.Format(true)
	assert.Contains(t, detailed, "Details: k=v")
}

func TestCollection_FormatEmpty(t *testing.T) {
	coll := NewCollection(nil)
	assert.Equal(t, "No validation errors", coll.Format(false))
}

func TestCollection_ToExternalForm(t *testing.T) {
	coll := NewCollection([]*Error{NewValidation("a"), NewValidation("b")})
	form := coll.ToExternalForm()

	assert.Equal(t, CodeMultipleValidation, form["error_code"])
	assert.Nil(t, form["field_name"])

	details, ok := form["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, details["error_count"])

	nested, ok := details["errors"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, nested, 2)
	assert.Equal(t, "a", nested[0]["message"])
	assert.Equal(t, "b", nested[1]["message"])
}
