// Package submission parses uploaded prediction files and validates them
// against the gold-label set before any scoring is attempted.
package submission

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/stadio-ml/stadio/internal/domain/dataset"
)

// Expected upload columns.
const (
	idColumn     = "Id"
	targetColumn = "Predicted"
)

// AllowedExtensions lists accepted upload file extensions.
var AllowedExtensions = []string{".csv"}

// Row is one parsed prediction record. Values stay textual until scoring:
// the metric decides whether it needs numbers.
type Row struct {
	ID    string
	Value string
}

// File is a parsed, not yet validated prediction upload.
type File struct {
	header []string
	rows   []Row
}

// CheckExtension rejects uploads whose filename extension is not allowed.
func CheckExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (allowed: %v)", ErrUnsupportedExtension, ext, AllowedExtensions)
}

// Parse reads a prediction CSV from an untrusted stream. Schema problems are
// not detected here; only malformed CSV surfaces as ErrParse.
func Parse(r io.Reader) (*File, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrParse)
	}

	f := &File{
		header: records[0],
		rows:   make([]Row, 0, len(records)-1),
	}

	cols := make(map[string]int, len(f.header))
	for i, name := range f.header {
		cols[name] = i
	}
	idIdx, hasID := cols[idColumn]
	valIdx, hasVal := cols[targetColumn]
	for _, rec := range records[1:] {
		row := Row{}
		if hasID {
			row.ID = rec[idIdx]
		}
		if hasVal {
			row.Value = rec[valIdx]
		}
		f.rows = append(f.rows, row)
	}
	return f, nil
}

// Rows returns the parsed prediction rows in upload order.
func (f *File) Rows() []Row { return f.rows }

// Len returns the number of prediction rows.
func (f *File) Len() int { return len(f.rows) }

// Validate checks the parsed upload against the gold-label set. Checks run
// in a fixed sequence and stop at the first failure:
//
//  1. required columns present            -> ErrMissingColumns
//  2. no columns beyond the required set  -> ErrUnexpectedColumns
//  3. row count matches the gold set      -> ErrRowCountMismatch
//  4. id sets are equal                   -> ErrIDSetMismatch
//
// Duplicate ids on either side collapse in the set comparison and surface
// as ErrIDSetMismatch.
func Validate(f *File, gold *dataset.GoldLabelSet) error {
	cols := make(map[string]struct{}, len(f.header))
	for _, name := range f.header {
		cols[name] = struct{}{}
	}

	var missing []string
	for _, required := range []string{idColumn, targetColumn} {
		if _, ok := cols[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v (submitted columns: %v)", ErrMissingColumns, missing, f.header)
	}

	if len(cols) > 2 {
		return fmt.Errorf("%w: expecting exactly [%s %s], got %v",
			ErrUnexpectedColumns, idColumn, targetColumn, f.header)
	}

	if f.Len() != gold.Len() {
		return fmt.Errorf("%w: submission has %d rows, dataset has %d",
			ErrRowCountMismatch, f.Len(), gold.Len())
	}

	ids := make(map[string]struct{}, len(f.rows))
	for _, row := range f.rows {
		ids[row.ID] = struct{}{}
	}
	if len(ids) != gold.Len() {
		return fmt.Errorf("%w", ErrIDSetMismatch)
	}
	for id := range ids {
		if !gold.HasID(id) {
			return fmt.Errorf("%w", ErrIDSetMismatch)
		}
	}
	return nil
}
