package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskmanager-core/internal/errors"
)

func withFixedNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = orig })
}

func requireCode(t *testing.T, err error, code string) *apperrors.Error {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected taxonomy error, got %T", err)
	assert.Equal(t, code, appErr.Code())
	return appErr
}

func TestNotEmptyString(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		want     string
		wantCode string
	}{
		{name: "plain value", value: "hello", want: "hello"},
		{name: "trims whitespace", value: "  hello  ", want: "hello"},
		{name: "empty", value: "", wantCode: "EMPTY_STRING_ERROR"},
		{name: "whitespace only", value: "   \t\n", wantCode: "EMPTY_STRING_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NotEmptyString(tt.value, "title")
			if tt.wantCode != "" {
				appErr := requireCode(t, err, tt.wantCode)
				assert.Equal(t, "title", appErr.FieldName())
				assert.Contains(t, appErr.Message(), "title")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		want     string
		wantCode string
		wantHint string
	}{
		{name: "uppercases", value: "#ff0000", want: "#FF0000"},
		{name: "already uppercase", value: "#00FF00", want: "#00FF00"},
		{name: "mixed case", value: "#AbCdEf", want: "#ABCDEF"},
		{name: "empty", value: "", wantCode: "COLOR_EMPTY"},
		{name: "missing hash", value: "FF0000", wantCode: "INVALID_COLOR_FORMAT", wantHint: "must start with '#'"},
		{name: "too short", value: "#FFF", wantCode: "INVALID_COLOR_FORMAT", wantHint: "exactly 7 characters"},
		{name: "too long", value: "#FF00000", wantCode: "INVALID_COLOR_FORMAT", wantHint: "exactly 7 characters"},
		{name: "non-hex digits", value: "#GGHHII", wantCode: "INVALID_COLOR_FORMAT", wantHint: "hexadecimal digits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HexColor(tt.value)
			if tt.wantCode != "" {
				appErr := requireCode(t, err, tt.wantCode)
				if tt.wantHint != "" {
					hint, ok := appErr.Detail("hint")
					require.True(t, ok)
					assert.Contains(t, hint, tt.wantHint)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFutureDate(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	withFixedNow(t, now)

	t.Run("future date passes", func(t *testing.T) {
		value := now.Add(24 * time.Hour)
		got, err := FutureDate(value, 0, "due_date")
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("current instant passes", func(t *testing.T) {
		_, err := FutureDate(now, 0, "due_date")
		assert.NoError(t, err)
	})

	t.Run("past date fails", func(t *testing.T) {
		appErr := requireCode(t, errOf(FutureDate(now.Add(-time.Hour), 0, "due_date")), "DATE_NOT_IN_FUTURE")
		assert.Contains(t, appErr.Message(), "must be in the future")
		days, ok := appErr.Detail("allow_past_days")
		require.True(t, ok)
		assert.Equal(t, 0, days)
	})

	t.Run("grace window admits recent past", func(t *testing.T) {
		_, err := FutureDate(now.AddDate(0, 0, -5), 7, "due_date")
		assert.NoError(t, err)
	})

	t.Run("past beyond grace window fails", func(t *testing.T) {
		appErr := requireCode(t, errOf(FutureDate(now.AddDate(0, 0, -10), 7, "due_date")), "DATE_NOT_IN_FUTURE")
		assert.Contains(t, appErr.Message(), "7 days in the past")
	})

	t.Run("more than a century ahead fails", func(t *testing.T) {
		appErr := requireCode(t, errOf(FutureDate(now.AddDate(101, 0, 0), 0, "due_date")), "DATE_TOO_FAR_FUTURE")
		assert.Contains(t, appErr.Message(), "100 years")
	})

	t.Run("zero value fails as invalid type", func(t *testing.T) {
		requireCode(t, errOf(FutureDate(time.Time{}, 0, "due_date")), "INVALID_DATE_TYPE")
	})
}

// errOf discards the value of a two-return validator call.
func errOf[T any](_ T, err error) error { return err }

func TestEmailFormat(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		want     string
		wantCode string
	}{
		{name: "valid", value: "user@example.com", want: "user@example.com"},
		{name: "lowercased", value: "User@Example.COM", want: "user@example.com"},
		{name: "trimmed", value: "  user@example.com  ", want: "user@example.com"},
		{name: "subdomains", value: "a.b@mail.example.co.uk", want: "a.b@mail.example.co.uk"},
		{name: "empty", value: "", wantCode: "EMAIL_EMPTY"},
		{name: "whitespace only", value: "   ", wantCode: "EMAIL_EMPTY"},
		{name: "missing at", value: "userexample.com", wantCode: "EMAIL_MISSING_AT"},
		{name: "multiple at", value: "user@@example.com", wantCode: "EMAIL_MULTIPLE_AT"},
		{name: "empty local part", value: "@example.com", wantCode: "EMAIL_EMPTY_LOCAL"},
		{name: "empty domain", value: "user@", wantCode: "EMAIL_EMPTY_DOMAIN"},
		{name: "domain without dot", value: "user@example", wantCode: "EMAIL_INVALID_DOMAIN"},
		{name: "domain starts with dot", value: "user@.example.com", wantCode: "EMAIL_INVALID_DOMAIN_FORMAT"},
		{name: "domain ends with dot", value: "user@example.com.", wantCode: "EMAIL_INVALID_DOMAIN_FORMAT"},
		{name: "invalid characters", value: "us er@example.com", wantCode: "EMAIL_INVALID_FORMAT"},
		{name: "single letter tld", value: "user@example.c", wantCode: "EMAIL_INVALID_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EmailFormat(tt.value)
			if tt.wantCode != "" {
				requireCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUsernameFormat(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		want     string
		wantCode string
	}{
		{name: "simple", value: "john_doe", want: "john_doe"},
		{name: "keeps casing", value: "JohnDoe", want: "JohnDoe"},
		{name: "digits and hyphen", value: "alice-smith2", want: "alice-smith2"},
		{name: "trimmed", value: "  user123  ", want: "user123"},
		{name: "minimum length", value: "abc", want: "abc"},
		{name: "empty", value: "", wantCode: "USERNAME_EMPTY"},
		{name: "too short", value: "ab", wantCode: "USERNAME_TOO_SHORT"},
		{name: "multibyte too short", value: "日本", wantCode: "USERNAME_TOO_SHORT"},
		{name: "too long", value: "a234567890123456789012345678901", wantCode: "USERNAME_TOO_LONG"},
		{name: "multibyte too long", value: strings.Repeat("語", 31), wantCode: "USERNAME_TOO_LONG"},
		{name: "starts with digit", value: "1user", wantCode: "USERNAME_INVALID_START"},
		{name: "starts with underscore", value: "_user", wantCode: "USERNAME_INVALID_START"},
		{name: "ends with underscore", value: "user_", wantCode: "USERNAME_INVALID_END"},
		{name: "ends with hyphen", value: "user-", wantCode: "USERNAME_INVALID_END"},
		{name: "double underscore", value: "john__doe", wantCode: "USERNAME_CONSECUTIVE_SPECIAL"},
		{name: "double hyphen", value: "john--doe", wantCode: "USERNAME_CONSECUTIVE_SPECIAL"},
		{name: "mixed specials", value: "john_-doe", wantCode: "USERNAME_CONSECUTIVE_SPECIAL"},
		{name: "invalid characters", value: "john doe!", wantCode: "USERNAME_INVALID_CHARACTERS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UsernameFormat(tt.value)
			if tt.wantCode != "" {
				requireCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUsernameFormat_LengthCountsRunes(t *testing.T) {
	// "日本" is 6 bytes but 2 characters
	appErr := requireCode(t, errOf(UsernameFormat("日本")), "USERNAME_TOO_SHORT")
	assert.Contains(t, appErr.Message(), "(got 2)")

	appErr = requireCode(t, errOf(UsernameFormat(strings.Repeat("語", 31))), "USERNAME_TOO_LONG")
	assert.Contains(t, appErr.Message(), "(got 31)")

	// 30 characters of multibyte text is not a length violation
	appErr = requireCode(t, errOf(UsernameFormat(strings.Repeat("語", 30))), "USERNAME_INVALID_CHARACTERS")
	assert.NotContains(t, appErr.Message(), "characters long")
}

func TestUsernameFormat_InvalidCharacterReporting(t *testing.T) {
	appErr := requireCode(t, errOf(UsernameFormat("john doe!x")), "USERNAME_INVALID_CHARACTERS")
	assert.Contains(t, appErr.Message(), "' '")
	assert.Contains(t, appErr.Message(), "'!'")

	invalid, ok := appErr.Detail("invalid_characters")
	require.True(t, ok)
	// de-duplicated and sorted
	assert.Equal(t, []string{" ", "!"}, invalid)
}
