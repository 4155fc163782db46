// Package customfield is the domain model for custom field definitions.
//
// A CustomField is built only through New, which validates the name, the
// label and the field classification in that order and stops at the first
// problem. Every value in this package is immutable once constructed.
package customfield

import (
	"fmt"
	"strings"
)

// Stage identifies which part of a custom field failed validation.
type Stage string

const (
	StageName      Stage = "name"
	StageLabel     Stage = "label"
	StageFieldType Stage = "field type"
)

// Error wraps a validation failure with the stage that produced it.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CustomField is a validated custom field definition.
type CustomField struct {
	name      Name
	label     Label
	fieldType FieldType
}

// New validates the raw column values of one field definition. rawOptions is
// the comma-separated option list; blank means no options.
func New(name, label string, typeID uint8, inputID *uint8, rawOptions string) (CustomField, error) {
	n, err := NewName(name)
	if err != nil {
		return CustomField{}, &Error{Stage: StageName, Err: err}
	}

	l, err := NewLabel(label)
	if err != nil {
		return CustomField{}, &Error{Stage: StageLabel, Err: err}
	}

	ft, err := Classify(typeID, inputID, SplitOptions(rawOptions))
	if err != nil {
		return CustomField{}, &Error{Stage: StageFieldType, Err: err}
	}

	return CustomField{name: n, label: l, fieldType: ft}, nil
}

// SplitOptions splits a comma-separated option list, trimming each option and
// dropping blanks.
func SplitOptions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	options := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			options = append(options, p)
		}
	}
	return options
}

func (c CustomField) Name() Name      { return c.name }
func (c CustomField) Label() Label    { return c.label }
func (c CustomField) Type() FieldType { return c.fieldType }
func (c CustomField) String() string  { return c.label.String() }
