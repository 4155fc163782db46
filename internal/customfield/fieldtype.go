package customfield

// fieldtype.go implements the field classification: a closed set of variants,
// each carrying only the payload its kind needs.
//
//	code  variant        payload
//	0     Text           TextInput
//	1     Memo           -
//	2     SingleSelect   SingleSelectInput, options
//	3     MultiSelect    options
//	4     Date           DateInput
//	5     Time           -
//	6     Checkbox       -
//	10    Rich           -
//
// Codes 7-9 are not assigned by the field API and are rejected.

import (
	"errors"
	"strings"
)

// ErrInvalidFieldTypeID is returned by Classify for an unassigned type code.
var ErrInvalidFieldTypeID = errors.New("invalid field type id was given")

// Field type wire codes.
const (
	TypeText         uint8 = 0
	TypeMemo         uint8 = 1
	TypeSingleSelect uint8 = 2
	TypeMultiSelect  uint8 = 3
	TypeDate         uint8 = 4
	TypeTime         uint8 = 5
	TypeCheckbox     uint8 = 6
	TypeRich         uint8 = 10
)

// FieldType is the classification of a custom field. The set of
// implementations is closed to this package.
type FieldType interface {
	// TypeID returns the wire code of the classification.
	TypeID() uint8
	// Kind returns a short human-readable name.
	Kind() string

	fieldType()
}

// Text is a single-line input.
type Text struct{ input TextInput }

// Memo is a multi-line plain text input.
type Memo struct{}

// SingleSelect picks one value from a list of options.
type SingleSelect struct {
	input   SingleSelectInput
	options []string
}

// MultiSelect picks any number of values from a list of options.
type MultiSelect struct{ options []string }

// Date is a calendar date, optionally with a time component.
type Date struct{ input DateInput }

// Time is a time of day.
type Time struct{}

// Checkbox is a boolean toggle.
type Checkbox struct{}

// Rich is a rich-text (HTML) input.
type Rich struct{}

func (Text) TypeID() uint8         { return TypeText }
func (Memo) TypeID() uint8         { return TypeMemo }
func (SingleSelect) TypeID() uint8 { return TypeSingleSelect }
func (MultiSelect) TypeID() uint8  { return TypeMultiSelect }
func (Date) TypeID() uint8         { return TypeDate }
func (Time) TypeID() uint8         { return TypeTime }
func (Checkbox) TypeID() uint8     { return TypeCheckbox }
func (Rich) TypeID() uint8         { return TypeRich }

func (Text) Kind() string         { return "text" }
func (Memo) Kind() string         { return "memo" }
func (SingleSelect) Kind() string { return "single select" }
func (MultiSelect) Kind() string  { return "multi select" }
func (Date) Kind() string         { return "date" }
func (Time) Kind() string         { return "time" }
func (Checkbox) Kind() string     { return "checkbox" }
func (Rich) Kind() string         { return "rich text" }

func (Text) fieldType()         {}
func (Memo) fieldType()         {}
func (SingleSelect) fieldType() {}
func (MultiSelect) fieldType()  {}
func (Date) fieldType()         {}
func (Time) fieldType()         {}
func (Checkbox) fieldType()     {}
func (Rich) fieldType()         {}

// Input returns the text input kind.
func (t Text) Input() TextInput { return t.input }

// Input returns the single-select input kind.
func (s SingleSelect) Input() SingleSelectInput { return s.input }

// Input returns the date input kind.
func (d Date) Input() DateInput { return d.input }

// Classify builds the classification for a type code. Kinds that carry an
// input kind resolve a nil inputID to code 0. options is kept only for the
// select kinds.
func Classify(typeID uint8, inputID *uint8, options []string) (FieldType, error) {
	switch typeID {
	case TypeText:
		input, err := ParseTextInput(inputOrDefault(inputID))
		if err != nil {
			return nil, err
		}
		return Text{input: input}, nil

	case TypeMemo:
		return Memo{}, nil

	case TypeSingleSelect:
		input, err := ParseSingleSelectInput(inputOrDefault(inputID))
		if err != nil {
			return nil, err
		}
		return SingleSelect{input: input, options: cloneOptions(options)}, nil

	case TypeMultiSelect:
		return MultiSelect{options: cloneOptions(options)}, nil

	case TypeDate:
		input, err := ParseDateInput(inputOrDefault(inputID))
		if err != nil {
			return nil, err
		}
		return Date{input: input}, nil

	case TypeTime:
		return Time{}, nil

	case TypeCheckbox:
		return Checkbox{}, nil

	case TypeRich:
		return Rich{}, nil

	default:
		return nil, ErrInvalidFieldTypeID
	}
}

// InputTypeID returns the input-kind wire code, if the classification has one.
func InputTypeID(ft FieldType) (uint8, bool) {
	switch v := ft.(type) {
	case Text:
		return v.input.ID(), true
	case SingleSelect:
		return v.input.ID(), true
	case Date:
		return v.input.ID(), true
	default:
		return 0, false
	}
}

// SelectionOptions returns a copy of the option list of a select kind.
func SelectionOptions(ft FieldType) ([]string, bool) {
	switch v := ft.(type) {
	case SingleSelect:
		return cloneOptions(v.options), true
	case MultiSelect:
		return cloneOptions(v.options), true
	default:
		return nil, false
	}
}

// JoinedOptions renders the option list as the API's comma-delimited
// new_values string. Commas inside an option are dropped.
func JoinedOptions(ft FieldType) (string, bool) {
	options, ok := SelectionOptions(ft)
	if !ok {
		return "", false
	}
	for i, option := range options {
		options[i] = strings.ReplaceAll(option, ",", "")
	}
	return strings.Join(options, ", "), true
}

func inputOrDefault(id *uint8) uint8 {
	if id == nil {
		return 0
	}
	return *id
}

func cloneOptions(options []string) []string {
	if options == nil {
		return nil
	}
	out := make([]string, len(options))
	copy(out, options)
	return out
}
