package customfield

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxLabelLength is the longest display label the field API accepts, in characters.
const MaxLabelLength = 256

// Label rejection causes.
var (
	ErrLabelEmpty   = errors.New("cannot be empty")
	ErrLabelTooLong = errors.New("cannot be longer than 256 characters")
)

// Label is the human-readable caption of a custom field.
type Label struct {
	value string
}

// NewLabel trims raw and validates it as a field label.
func NewLabel(raw string) (Label, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Label{}, ErrLabelEmpty
	}
	if utf8.RuneCountInString(trimmed) > MaxLabelLength {
		return Label{}, ErrLabelTooLong
	}
	return Label{value: trimmed}, nil
}

func (l Label) String() string {
	return l.value
}
