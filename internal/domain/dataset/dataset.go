// Package dataset loads and serves the gold-label set the competition is
// scored against. The set is read once at startup from a trusted CSV file
// and is immutable for the process lifetime.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// Gold file column names.
const (
	idColumn         = "Id"
	targetColumn     = "Predicted"
	visibilityColumn = "Public"
)

// Visibility controls which score partitions a gold row contributes to.
type Visibility int

// Visibility flag domain. Both contributes to public and private scoring,
// which intentionally lets "leaked" rows count in both views.
const (
	PrivateOnly Visibility = 0
	PublicOnly  Visibility = 1
	Both        Visibility = 2
)

// Row is a single gold-label record.
type Row struct {
	ID         string
	Target     float64
	Visibility Visibility
}

// GoldLabelSet is the ordered, immutable mapping of row ids to target
// values and visibility flags.
type GoldLabelSet struct {
	rows []Row
	byID map[string]Row
}

// LoadFile reads and validates a gold-label CSV from path.
func LoadFile(path string) (*GoldLabelSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGoldParse, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads and validates a gold-label CSV with columns {Id, Predicted,
// Public} where Public is 0, 1 or 2. Column order is not significant.
func Load(r io.Reader) (*GoldLabelSet, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGoldParse, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrGoldSchema)
	}

	header := records[0]
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{idColumn, targetColumn, visibilityColumn} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrGoldSchema, required)
		}
	}
	if len(cols) != 3 {
		return nil, fmt.Errorf("%w: expected columns [%s %s %s], got %v",
			ErrGoldSchema, idColumn, targetColumn, visibilityColumn, header)
	}

	g := &GoldLabelSet{
		rows: make([]Row, 0, len(records)-1),
		byID: make(map[string]Row, len(records)-1),
	}
	for _, rec := range records[1:] {
		id := rec[cols[idColumn]]
		if _, dup := g.byID[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrGoldDuplicate, id)
		}
		target, err := strconv.ParseFloat(rec[cols[targetColumn]], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %q target: %w", ErrGoldParse, id, err)
		}
		flag, err := strconv.Atoi(rec[cols[visibilityColumn]])
		if err != nil || flag < 0 || flag > 2 {
			return nil, fmt.Errorf("%w: row %q has %q", ErrGoldVisibility, id, rec[cols[visibilityColumn]])
		}
		row := Row{ID: id, Target: target, Visibility: Visibility(flag)}
		g.rows = append(g.rows, row)
		g.byID[id] = row
	}

	if len(g.rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrGoldSchema)
	}
	return g, nil
}

// Len returns the number of gold rows.
func (g *GoldLabelSet) Len() int { return len(g.rows) }

// HasID reports whether id is present in the gold set.
func (g *GoldLabelSet) HasID(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// IDs returns all gold row ids, sorted.
func (g *GoldLabelSet) IDs() []string {
	ids := make([]string, 0, len(g.rows))
	for _, row := range g.rows {
		ids = append(ids, row.ID)
	}
	sort.Strings(ids)
	return ids
}

// PublicRows returns the rows contributing to the public score
// (visibility 1 or 2), sorted by id.
func (g *GoldLabelSet) PublicRows() []Row {
	return g.partition(func(v Visibility) bool { return v == PublicOnly || v == Both })
}

// PrivateRows returns the rows contributing to the private score
// (visibility 0 or 2), sorted by id.
func (g *GoldLabelSet) PrivateRows() []Row {
	return g.partition(func(v Visibility) bool { return v == PrivateOnly || v == Both })
}

func (g *GoldLabelSet) partition(keep func(Visibility) bool) []Row {
	out := make([]Row, 0, len(g.rows))
	for _, row := range g.rows {
		if keep(row.Visibility) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
