package types

import (
	"fmt"
	"unicode/utf8"

	apperrors "taskmanager-core/internal/errors"
	"taskmanager-core/internal/validation"
)

// DefaultTagColor is applied when a tag is created without a color.
const DefaultTagColor = "#808080"

const maxTagNameLength = 50

// Tag is a label that can be applied to tasks. Tags are immutable: both
// fields are fixed at construction.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// NewTag creates a validated tag. The name is trimmed and limited to 50
// characters; the color is canonicalized to uppercase #RRGGBB, defaulting to
// gray when empty.
func NewTag(name, color string) (Tag, error) {
	trimmed, err := validation.NotEmptyString(name, "name")
	if err != nil {
		return Tag{}, err
	}
	if n := utf8.RuneCountInString(trimmed); n > maxTagNameLength {
		return Tag{}, apperrors.NewFieldValidation(
			"name",
			fmt.Sprintf("Tag name must be at most %d characters long (got %d)", maxTagNameLength, n),
			trimmed,
		).WithDetail("max_length", maxTagNameLength)
	}

	if color == "" {
		color = DefaultTagColor
	}
	normalized, err := validation.HexColor(color)
	if err != nil {
		return Tag{}, err
	}

	return Tag{Name: trimmed, Color: normalized}, nil
}

// ToExternalForm converts the tag to a plain key-value representation.
func (t Tag) ToExternalForm() map[string]any {
	return map[string]any{
		"name":  t.Name,
		"color": t.Color,
	}
}
