package customfield

// inputtype.go defines the three input-kind families that refine Text,
// SingleSelect and Date fields.
//
// Each family has two explicit mappings, Parse*Input (wire code -> kind) and
// ID (kind -> wire code). They are exact inverses over the listed codes; any
// other code is rejected with an *InputTypeError naming the family.

import (
	"errors"
	"fmt"
)

// ErrInvalidInputType matches every *InputTypeError via errors.Is.
var ErrInvalidInputType = errors.New("invalid input type")

// InputFamily names the field kind whose input-kind table rejected a code.
type InputFamily string

const (
	FamilyText         InputFamily = "text"
	FamilySingleSelect InputFamily = "single select"
	FamilyDate         InputFamily = "date"
)

// InputTypeError reports an input type id that is not listed for its family.
type InputTypeError struct {
	Family InputFamily
	ID     uint8
}

func (e *InputTypeError) Error() string {
	return fmt.Sprintf("invalid %s input type was given: %d", e.Family, e.ID)
}

// Is reports whether target is ErrInvalidInputType.
func (e *InputTypeError) Is(target error) bool {
	return target == ErrInvalidInputType
}

/* ----------------------------------------
	Text
---------------------------------------- */

// TextInput restricts what a text field accepts.
type TextInput int

const (
	TextAnything TextInput = iota
	TextInteger
	TextMoney
	TextAlphanumeric
	TextDecimal
	TextURL
	TextPassword
)

// ParseTextInput maps a wire code to its text input kind.
func ParseTextInput(id uint8) (TextInput, error) {
	switch id {
	case 0:
		return TextAnything, nil
	case 1:
		return TextInteger, nil
	case 2:
		return TextMoney, nil
	case 3:
		return TextAlphanumeric, nil
	case 4:
		return TextDecimal, nil
	case 5:
		return TextURL, nil
	case 6:
		return TextPassword, nil
	default:
		return 0, &InputTypeError{Family: FamilyText, ID: id}
	}
}

// ID returns the wire code of the input kind.
func (t TextInput) ID() uint8 {
	switch t {
	case TextInteger:
		return 1
	case TextMoney:
		return 2
	case TextAlphanumeric:
		return 3
	case TextDecimal:
		return 4
	case TextURL:
		return 5
	case TextPassword:
		return 6
	default:
		return 0
	}
}

func (t TextInput) String() string {
	switch t {
	case TextInteger:
		return "integer"
	case TextMoney:
		return "money"
	case TextAlphanumeric:
		return "alphanumeric"
	case TextDecimal:
		return "decimal"
	case TextURL:
		return "url"
	case TextPassword:
		return "password"
	default:
		return "anything"
	}
}

/* ----------------------------------------
	Single select
---------------------------------------- */

// SingleSelectInput controls how a single-select field is presented.
type SingleSelectInput int

const (
	SelectStandard SingleSelectInput = iota
	SelectTree
	SelectRadio
)

// ParseSingleSelectInput maps a wire code to its single-select input kind.
func ParseSingleSelectInput(id uint8) (SingleSelectInput, error) {
	switch id {
	case 0:
		return SelectStandard, nil
	case 1:
		return SelectTree, nil
	case 2:
		return SelectRadio, nil
	default:
		return 0, &InputTypeError{Family: FamilySingleSelect, ID: id}
	}
}

// ID returns the wire code of the input kind.
func (s SingleSelectInput) ID() uint8 {
	switch s {
	case SelectTree:
		return 1
	case SelectRadio:
		return 2
	default:
		return 0
	}
}

func (s SingleSelectInput) String() string {
	switch s {
	case SelectTree:
		return "tree"
	case SelectRadio:
		return "radio"
	default:
		return "standard"
	}
}

/* ----------------------------------------
	Date
---------------------------------------- */

// DateInput selects between date-only and date-time fields.
type DateInput int

const (
	DateOnly DateInput = iota
	DateTime
)

// ParseDateInput maps a wire code to its date input kind.
func ParseDateInput(id uint8) (DateInput, error) {
	switch id {
	case 0:
		return DateOnly, nil
	case 1:
		return DateTime, nil
	default:
		return 0, &InputTypeError{Family: FamilyDate, ID: id}
	}
}

// ID returns the wire code of the input kind.
func (d DateInput) ID() uint8 {
	if d == DateTime {
		return 1
	}
	return 0
}

func (d DateInput) String() string {
	if d == DateTime {
		return "date time"
	}
	return "date"
}
