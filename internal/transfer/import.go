package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/xuri/excelize/v2"

	"github.com/jeanpaul/phonebook/internal/contact"
	"github.com/jeanpaul/phonebook/internal/schema"
	"github.com/jeanpaul/phonebook/internal/store"
)

// Adder creates contacts. *store.Store satisfies it.
type Adder interface {
	Add(name, number string) (contact.Contact, error)
	// Location names the storage the contacts end up in. A matching file
	// is never imported into itself.
	Location() string
}

// errOwnStorage marks a matched file that is the phone book's own storage.
var errOwnStorage = errors.New("is the phone book's own storage, not imported")

// Report summarizes an import.
type Report struct {
	Files   []string
	Added   []contact.Contact
	Skipped []RowError
}

// Expand resolves a glob pattern, with ** support, into a sorted list of
// files.
func Expand(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %q", pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

// ReadFile returns the drafts in one file and the rows it had to skip.
func ReadFile(path string) ([]Draft, []RowError, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, nil, err
	}
	switch format {
	case FormatCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		if err != nil {
			return nil, nil, err
		}
		drafts, skipped := draftsFromRows(path, rows)
		return drafts, skipped, nil

	case FormatXLSX:
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, nil
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, nil, err
		}
		drafts, skipped := draftsFromRows(path, rows)
		return drafts, skipped, nil

	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		contacts, positions, total := store.DecodeElements(schema.NewValidator(), data)
		var drafts []Draft
		var skipped []RowError
		next := 0
		for i, c := range contacts {
			for ; next < positions[i]; next++ {
				skipped = append(skipped, RowError{File: path, Row: next + 1, Err: errNotARecord})
			}
			next++
			drafts = append(drafts, Draft{
				Name:   strings.TrimSpace(c.Name),
				Number: strings.TrimSpace(c.Number),
				Row:    positions[i] + 1,
			})
		}
		for ; next < total; next++ {
			skipped = append(skipped, RowError{File: path, Row: next + 1, Err: errNotARecord})
		}
		return drafts, skipped, nil
	}
}

// collect reads every file matching pattern, except the storage at
// location, and splits the drafts into valid ones and skipped rows.
func collect(pattern, location string) ([]string, []Draft, []RowError, error) {
	matches, err := Expand(pattern)
	if err != nil {
		return nil, nil, nil, err
	}
	var files []string
	var valid []Draft
	var skipped []RowError
	for _, file := range matches {
		if sameFile(file, location) {
			skipped = append(skipped, RowError{File: file, Err: errOwnStorage})
			continue
		}
		files = append(files, file)
	}
	for _, file := range files {
		drafts, bad, err := ReadFile(file)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("read %s: %w", file, err)
		}
		skipped = append(skipped, bad...)
		for _, d := range drafts {
			if err := contact.ValidateNew(d.Name, d.Number); err != nil {
				skipped = append(skipped, RowError{File: file, Row: d.Row, Err: err})
				continue
			}
			valid = append(valid, d)
		}
	}
	return files, valid, skipped, nil
}

// Import appends every valid row of the matching files. Each contact is
// persisted as it is added; a failed save stops the import.
func Import(dst Adder, pattern string) (Report, error) {
	files, drafts, skipped, err := collect(pattern, dst.Location())
	if err != nil {
		return Report{}, err
	}
	rep := Report{Files: files, Skipped: skipped}
	for _, d := range drafts {
		c, err := dst.Add(d.Name, d.Number)
		if err != nil {
			var se *store.SaveError
			if errors.As(err, &se) {
				rep.Added = append(rep.Added, c)
			}
			return rep, err
		}
		rep.Added = append(rep.Added, c)
	}
	return rep, nil
}

// Preview computes what Import would do without touching the phone book.
// The returned diff compares the persisted form before and after.
func Preview(current []contact.Contact, location, pattern string) (Report, string, error) {
	files, drafts, skipped, err := collect(pattern, location)
	if err != nil {
		return Report{}, "", err
	}
	rep := Report{Files: files, Skipped: skipped}

	after := append([]contact.Contact(nil), current...)
	for _, d := range drafts {
		c := contact.Contact{ID: contact.NextID(after), Name: d.Name, Number: d.Number}
		after = append(after, c)
		rep.Added = append(rep.Added, c)
	}

	diff, err := Diff(location, current, after)
	if err != nil {
		return Report{}, "", err
	}
	return rep, diff, nil
}

// sameFile reports whether path and location name the same file.
func sameFile(path, location string) bool {
	if location == "" {
		return false
	}
	a, errA := filepath.Abs(path)
	b, errB := filepath.Abs(location)
	if errA == nil && errB == nil && a == b {
		return true
	}
	fa, errA := os.Stat(path)
	fb, errB := os.Stat(location)
	return errA == nil && errB == nil && os.SameFile(fa, fb)
}

// Diff renders a unified diff between two collections in their persisted
// JSON form. It is empty when nothing changes.
func Diff(location string, before, after []contact.Contact) (string, error) {
	a, err := store.EncodeContacts(before)
	if err != nil {
		return "", err
	}
	b, err := store.EncodeContacts(after)
	if err != nil {
		return "", err
	}
	from, to := string(a)+"\n", string(b)+"\n"
	edits := myers.ComputeEdits(span.URIFromPath(location), from, to)
	return fmt.Sprint(gotextdiff.ToUnified(location, location+" (after import)", from, edits)), nil
}
