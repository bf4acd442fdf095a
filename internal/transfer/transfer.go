// Package transfer moves contacts between the phone book and CSV, XLSX or
// JSON files.
package transfer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jeanpaul/phonebook/internal/contact"
)

// Format is a file format chosen by extension.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// header is written as the first row of tabular exports and recognized on
// import.
var header = []string{"ID", "Name", "Number"}

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported file type %q (use .csv, .xlsx or .json)", filepath.Ext(path))
}

// Draft is a contact read from a file, before it has an id.
type Draft struct {
	Name   string
	Number string
	// Row is the 1-based position of the draft in its file.
	Row int
}

// RowError describes a row that was skipped.
type RowError struct {
	File string
	Row  int
	Err  error
}

func (e RowError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s row %d: %v", e.File, e.Row, e.Err)
}

// errNotARecord marks a JSON array element that is not a contact object.
var errNotARecord = fmt.Errorf("%w: not a contact with id, name and number", contact.ErrInvalidArgument)

// isHeader reports whether a tabular row is the export header.
func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), header[0])
}

// draftFromRow accepts "id, name, number" rows, ignoring the id, and
// "name, number" rows.
func draftFromRow(row []string) (Draft, error) {
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}
	switch {
	case len(row) >= 3:
		return Draft{Name: row[1], Number: row[2]}, nil
	case len(row) == 2:
		return Draft{Name: row[0], Number: row[1]}, nil
	}
	return Draft{}, fmt.Errorf("expected 2 or 3 columns, got %d", len(row))
}

// draftsFromRows converts tabular rows, skipping a leading header.
// Row numbers in errors are 1-based, as a spreadsheet shows them.
func draftsFromRows(file string, rows [][]string) ([]Draft, []RowError) {
	var drafts []Draft
	var skipped []RowError
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		if len(row) == 0 {
			continue
		}
		d, err := draftFromRow(row)
		if err != nil {
			skipped = append(skipped, RowError{File: file, Row: i + 1, Err: err})
			continue
		}
		d.Row = i + 1
		drafts = append(drafts, d)
	}
	return drafts, skipped
}
