// Package source reads custom field definitions from a CSV file.
//
// The file must carry a header row naming every column in RequiredColumns, in
// any order and any case. input_type_id and selection_options may be blank
// per row. Rows are reported 1-based with the header as row 1, so the first
// data row is row 2.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/JonMunkholm/halofields/internal/customfield"
)

// Column names.
const (
	ColName             = "name"
	ColLabel            = "label"
	ColFieldTypeID      = "field_type_id"
	ColInputTypeID      = "input_type_id"
	ColSelectionOptions = "selection_options"
)

// RequiredColumns lists the header columns every source file must have.
var RequiredColumns = []string{ColName, ColLabel, ColFieldTypeID, ColInputTypeID, ColSelectionOptions}

var (
	ErrNoHeader      = errors.New("file has no header row")
	ErrMissingColumn = errors.New("missing required column")
)

// RowError is a problem with one data row.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Options controls how invalid rows are handled.
type Options struct {
	// CollectErrors keeps reading past invalid rows and reports every row
	// error together. By default loading stops at the first invalid row.
	CollectErrors bool
}

// LoadFile opens path and loads its custom fields.
func LoadFile(path string, opts Options) ([]customfield.CustomField, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()

	fields, err := Load(f, opts)
	if err != nil {
		return fields, fmt.Errorf("load %s: %w", path, err)
	}
	return fields, nil
}

// Load reads custom fields from CSV data in r.
//
// With CollectErrors set, the valid fields are returned alongside the joined
// row errors.
func Load(r io.Reader, opts Options) ([]customfield.CustomField, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := MakeHeaderIndex(header)
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	var (
		fields  []customfield.CustomField
		rowErrs []error
	)
	for i := 0; ; i++ {
		line := i + 2

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed quoting leaves the reader in an unknown position.
			rowErrs = append(rowErrs, &RowError{Line: line, Err: err})
			break
		}

		cf, err := parseRow(row, len(header), idx)
		if err != nil {
			rowErr := &RowError{Line: line, Err: err}
			if !opts.CollectErrors {
				return nil, rowErr
			}
			rowErrs = append(rowErrs, rowErr)
			continue
		}
		fields = append(fields, cf)
	}

	if len(rowErrs) > 0 {
		if !opts.CollectErrors {
			return nil, rowErrs[0]
		}
		return fields, errors.Join(rowErrs...)
	}

	slog.Debug("source loaded", "fields", len(fields))
	return fields, nil
}

func parseRow(row []string, width int, idx HeaderIndex) (customfield.CustomField, error) {
	if len(row) != width {
		return customfield.CustomField{}, fmt.Errorf("expected %d columns, got %d", width, len(row))
	}

	cell := func(col string) string {
		return CleanCell(row[idx[col]])
	}

	typeID, err := parseID(ColFieldTypeID, cell(ColFieldTypeID))
	if err != nil {
		return customfield.CustomField{}, err
	}

	var inputID *uint8
	if raw := cell(ColInputTypeID); raw != "" {
		id, err := parseID(ColInputTypeID, raw)
		if err != nil {
			return customfield.CustomField{}, err
		}
		inputID = &id
	}

	return customfield.New(cell(ColName), cell(ColLabel), typeID, inputID, cell(ColSelectionOptions))
}

func parseID(col, raw string) (uint8, error) {
	if raw == "" {
		return 0, fmt.Errorf("%s is required", col)
	}
	n, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a whole number from 0 to 255", col, raw)
	}
	return uint8(n), nil
}
