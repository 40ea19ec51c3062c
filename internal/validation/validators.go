// Package validation provides the reusable field validators and the batch
// validation context. Validators are pure: they return the normalized value
// on success and a taxonomy error describing exactly why the input was
// rejected on failure.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	apperrors "taskmanager-core/internal/errors"
)

// timeNow is the clock seam for date validation.
var timeNow = time.Now

var (
	hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z]([a-zA-Z0-9_-]*[a-zA-Z0-9])?$`)
)

// NotEmptyString validates that a string is not empty or whitespace only and
// returns the trimmed value.
func NotEmptyString(value, fieldName string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", apperrors.NewFieldValidation(
			fieldName,
			fmt.Sprintf("%s cannot be empty or whitespace only", fieldName),
			value,
		).WithCode("EMPTY_STRING_ERROR").WithDetail(
			"suggestion", fmt.Sprintf("Provide a non-empty %s with at least one non-whitespace character", fieldName),
		)
	}
	return trimmed, nil
}

// HexColor validates a #RRGGBB color value and returns it uppercased.
func HexColor(value string) (string, error) {
	if value == "" {
		return "", apperrors.NewFieldValidation("color", "Color cannot be empty", value).
			WithCode("COLOR_EMPTY").
			WithDetails(map[string]any{
				"expected_format": "#RRGGBB",
				"examples":        []string{"#FF0000 (red)", "#00FF00 (green)", "#0000FF (blue)", "#808080 (gray)"},
			})
	}

	if !hexColorPattern.MatchString(value) {
		details := map[string]any{
			"expected_format": "#RRGGBB (e.g., #FF0000)",
			"examples":        []string{"#FF0000 (red)", "#00FF00 (green)", "#0000FF (blue)"},
		}
		switch {
		case !strings.HasPrefix(value, "#"):
			details["hint"] = "Color must start with '#' symbol"
		case utf8.RuneCountInString(value) != 7:
			details["hint"] = fmt.Sprintf("Color must be exactly 7 characters (# + 6 hex digits), got %d characters", utf8.RuneCountInString(value))
		default:
			details["hint"] = "Color must contain only hexadecimal digits (0-9, A-F) after the '#' symbol"
		}
		return "", apperrors.NewFieldValidation(
			"color",
			fmt.Sprintf("Invalid color format: '%s'. Expected format: #RRGGBB", value),
			value,
		).WithCode("INVALID_COLOR_FORMAT").WithDetails(details)
	}

	return strings.ToUpper(value), nil
}

// FutureDate validates that a timestamp is in the future or within the
// allowed number of past days. The boundary is strict: a value equal to the
// current instant passes.
func FutureDate(value time.Time, allowPastDays int, fieldName string) (time.Time, error) {
	if value.IsZero() {
		return time.Time{}, apperrors.NewDateRange(
			fmt.Sprintf("%s must be a valid timestamp", fieldName),
			fieldName, "",
		).WithCode("INVALID_DATE_TYPE").WithDetails(map[string]any{
			"provided_type": "zero timestamp",
			"expected_type": "timestamp",
		})
	}

	now := timeNow()
	earliestAllowed := now.AddDate(0, 0, -allowPastDays)

	if value.Before(earliestAllowed) {
		var message, hint string
		if allowPastDays == 0 {
			message = fmt.Sprintf("%s must be in the future, not in the past", fieldName)
			hint = "Provide a date and time that is after the current time"
		} else {
			message = fmt.Sprintf("%s cannot be more than %d days in the past", fieldName, allowPastDays)
			hint = fmt.Sprintf("Provide a date within the last %d days or in the future", allowPastDays)
		}
		return time.Time{}, apperrors.NewDateRange(message, fieldName, value.Format(time.RFC3339Nano)).
			WithCode("DATE_NOT_IN_FUTURE").
			WithDetails(map[string]any{
				"provided_date":    value.Format(time.RFC3339Nano),
				"current_time":     now.Format(time.RFC3339Nano),
				"earliest_allowed": earliestAllowed.Format(time.RFC3339Nano),
				"allow_past_days":  allowPastDays,
				"hint":             hint,
			})
	}

	maxFuture := now.AddDate(100, 0, 0)
	if value.After(maxFuture) {
		return time.Time{}, apperrors.NewDateRange(
			fmt.Sprintf("%s is unreasonably far in the future (more than 100 years)", fieldName),
			fieldName, value.Format(time.RFC3339Nano),
		).WithCode("DATE_TOO_FAR_FUTURE").WithDetails(map[string]any{
			"provided_date": value.Format(time.RFC3339Nano),
			"current_time":  now.Format(time.RFC3339Nano),
			"max_allowed":   maxFuture.Format(time.RFC3339Nano),
			"hint":          "Ensure the date is realistic and within a reasonable timeframe",
		})
	}

	return value, nil
}

// EmailFormat validates an email address with targeted feedback for each way
// it can be malformed and returns the trimmed, lowercased value.
func EmailFormat(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", apperrors.NewFieldValidation("email", "Email address cannot be empty", value).
			WithCode("EMAIL_EMPTY").
			WithDetails(map[string]any{
				"expected_format": "username@domain.com",
				"example":         "user@example.com",
			})
	}

	if !strings.Contains(trimmed, "@") {
		return "", apperrors.NewFieldValidation("email", "Email address must contain '@' symbol", trimmed).
			WithCode("EMAIL_MISSING_AT").
			WithDetails(map[string]any{
				"expected_format": "username@domain.com",
				"hint":            "Email must have format: username@domain.com",
			})
	}

	parts := strings.Split(trimmed, "@")
	if len(parts) != 2 {
		return "", apperrors.NewFieldValidation("email", "Email address must contain exactly one '@' symbol", trimmed).
			WithCode("EMAIL_MULTIPLE_AT").
			WithDetails(map[string]any{
				"expected_format": "username@domain.com",
				"hint":            "Email should have only one '@' separating username and domain",
			})
	}

	localPart, domainPart := parts[0], parts[1]

	if localPart == "" {
		return "", apperrors.NewFieldValidation("email", "Email address must have a username before '@'", trimmed).
			WithCode("EMAIL_EMPTY_LOCAL").
			WithDetails(map[string]any{
				"expected_format": "username@domain.com",
				"hint":            "Provide a username before the '@' symbol",
			})
	}

	if domainPart == "" {
		return "", apperrors.NewFieldValidation("email", "Email address must have a domain after '@'", trimmed).
			WithCode("EMAIL_EMPTY_DOMAIN").
			WithDetails(map[string]any{
				"expected_format": "username@domain.com",
				"hint":            "Provide a domain after the '@' symbol (e.g., example.com)",
			})
	}

	if !strings.Contains(domainPart, ".") {
		return "", apperrors.NewFieldValidation("email", "Email domain must contain a period (e.g., example.com)", trimmed).
			WithCode("EMAIL_INVALID_DOMAIN").
			WithDetails(map[string]any{
				"expected_format": "username@domain.com",
				"hint":            "Domain should include a top-level domain like '.com', '.org', '.net', etc.",
				"examples":        []string{"user@example.com", "admin@company.org", "info@site.co.uk"},
			})
	}

	if strings.HasPrefix(domainPart, ".") || strings.HasSuffix(domainPart, ".") {
		return "", apperrors.NewFieldValidation("email", "Email domain cannot start or end with a period", trimmed).
			WithCode("EMAIL_INVALID_DOMAIN_FORMAT").
			WithDetail("hint", "Domain should be in format: example.com (not .example.com or example.com.)")
	}

	if !emailPattern.MatchString(trimmed) {
		return "", apperrors.NewFieldValidation("email", "Email address contains invalid characters or format", trimmed).
			WithCode("EMAIL_INVALID_FORMAT").
			WithDetails(map[string]any{
				"expected_format":    "username@domain.com",
				"allowed_characters": "Letters, numbers, dots, hyphens, underscores in username; letters, numbers, dots, hyphens in domain",
				"examples":           []string{"user@example.com", "john.doe@company.co.uk", "admin_123@site.org"},
			})
	}

	return strings.ToLower(trimmed), nil
}

// UsernameFormat validates a username against the character and structure
// rules and returns the trimmed value with its casing preserved.
//
// Rules: 3-30 characters, starts with a letter, contains only letters,
// numbers, underscores and hyphens, does not end with a special character and
// never repeats special characters back to back.
func UsernameFormat(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", apperrors.NewFieldValidation("username", "Username cannot be empty", value).
			WithCode("USERNAME_EMPTY").
			WithDetails(map[string]any{
				"rules": []string{
					"Must be 3-30 characters long",
					"Must start with a letter",
					"Can contain letters, numbers, underscores, and hyphens",
				},
				"examples": []string{"john_doe", "user123", "alice-smith"},
			})
	}

	if n := utf8.RuneCountInString(trimmed); n < 3 {
		return "", apperrors.NewFieldValidation(
			"username",
			fmt.Sprintf("Username must be at least 3 characters long (got %d)", n),
			trimmed,
		).WithCode("USERNAME_TOO_SHORT").WithDetails(map[string]any{
			"min_length": 3,
			"max_length": 30,
			"hint":       "Provide a username with at least 3 characters",
		})
	}

	if n := utf8.RuneCountInString(trimmed); n > 30 {
		return "", apperrors.NewFieldValidation(
			"username",
			fmt.Sprintf("Username must be at most 30 characters long (got %d)", n),
			trimmed,
		).WithCode("USERNAME_TOO_LONG").WithDetails(map[string]any{
			"min_length": 3,
			"max_length": 30,
			"hint":       "Shorten the username to 30 characters or less",
		})
	}

	runes := []rune(trimmed)
	if !unicode.IsLetter(runes[0]) {
		return "", apperrors.NewFieldValidation(
			"username",
			fmt.Sprintf("Username must start with a letter (got '%c')", runes[0]),
			trimmed,
		).WithCode("USERNAME_INVALID_START").WithDetails(map[string]any{
			"hint":     "Username should begin with a letter (a-z or A-Z)",
			"examples": []string{"john_doe", "alice123", "user_name"},
		})
	}

	last := runes[len(runes)-1]
	if last == '_' || last == '-' {
		return "", apperrors.NewFieldValidation(
			"username",
			fmt.Sprintf("Username cannot end with '%c'", last),
			trimmed,
		).WithCode("USERNAME_INVALID_END").WithDetails(map[string]any{
			"hint":     "Username should end with a letter or number",
			"examples": []string{"john_doe", "user123", "alice_smith"},
		})
	}

	for _, pair := range []string{"__", "--", "_-", "-_"} {
		if strings.Contains(trimmed, pair) {
			return "", apperrors.NewFieldValidation(
				"username",
				"Username cannot contain consecutive special characters",
				trimmed,
			).WithCode("USERNAME_CONSECUTIVE_SPECIAL").WithDetails(map[string]any{
				"hint":    "Use only single underscores or hyphens between words",
				"valid":   "john_doe, user-name",
				"invalid": "john__doe, user--name, name_-test",
			})
		}
	}

	if !usernamePattern.MatchString(trimmed) {
		if invalid := invalidUsernameRunes(trimmed); len(invalid) > 0 {
			quoted := make([]string, len(invalid))
			for i, r := range invalid {
				quoted[i] = fmt.Sprintf("'%s'", r)
			}
			return "", apperrors.NewFieldValidation(
				"username",
				fmt.Sprintf("Username contains invalid characters: %s", strings.Join(quoted, ", ")),
				trimmed,
			).WithCode("USERNAME_INVALID_CHARACTERS").WithDetails(map[string]any{
				"allowed_characters": "letters (a-z, A-Z), numbers (0-9), underscores (_), hyphens (-)",
				"invalid_characters": invalid,
				"hint":               "Remove or replace the invalid characters",
			})
		}

		return "", apperrors.NewFieldValidation("username", "Username format is invalid", trimmed).
			WithCode("USERNAME_INVALID_FORMAT").
			WithDetails(map[string]any{
				"rules": []string{
					"Must start with a letter",
					"Can contain letters, numbers, underscores, and hyphens",
					"Cannot end with underscore or hyphen",
					"Cannot have consecutive special characters",
				},
				"examples": []string{"john_doe", "user123", "alice-smith", "bob_jones2"},
			})
	}

	return trimmed, nil
}

// invalidUsernameRunes returns the de-duplicated, sorted set of characters
// that fall outside the allowed username alphabet.
func invalidUsernameRunes(value string) []string {
	seen := map[rune]bool{}
	var invalid []string
	for _, r := range value {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-' {
			continue
		}
		if !seen[r] {
			seen[r] = true
			invalid = append(invalid, string(r))
		}
	}
	sort.Strings(invalid)
	return invalid
}
