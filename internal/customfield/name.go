package customfield

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength is the longest name the field API accepts, in characters.
const MaxNameLength = 64

// Name rejection causes.
var (
	ErrNameEmpty             = errors.New("cannot be empty")
	ErrNameTooLong           = errors.New("cannot be longer than 64 characters")
	ErrNameInvalidCharacters = errors.New("cannot contain special characters")
	ErrNameInvalidWhitespace = errors.New("cannot contain whitespace")
)

// Name is the internal identifier of a custom field: letters, digits and
// underscores only.
type Name struct {
	value string
}

// NewName trims raw and validates it as a field name.
func NewName(raw string) (Name, error) {
	trimmed := strings.TrimSpace(raw)

	switch {
	case trimmed == "":
		return Name{}, ErrNameEmpty
	case utf8.RuneCountInString(trimmed) > MaxNameLength:
		return Name{}, ErrNameTooLong
	case strings.IndexFunc(trimmed, unicode.IsSpace) >= 0:
		return Name{}, ErrNameInvalidWhitespace
	case strings.IndexFunc(trimmed, invalidNameRune) >= 0:
		return Name{}, ErrNameInvalidCharacters
	}

	return Name{value: trimmed}, nil
}

func invalidNameRune(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}

func (n Name) String() string {
	return n.value
}
