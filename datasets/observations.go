package datasets

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Table is an in-memory observation table: one row per telemetry fix, with
// columns discovered from the CSV header. Records are kept as strings so
// bookkeeping columns (timestamps, ids) survive untouched; numeric access
// goes through FloatColumn and Features.
type Table struct {
	// Columns in header order.
	Columns []string

	// Records[i] is row i, aligned with Columns.
	Records [][]string

	colIndex map[string]int
}

// MaleFile and FemaleFile are the two flat exports Load concatenates.
const (
	MaleFile   = "maleclean4.csv"
	FemaleFile = "femaleclean4.csv"
)

// NewTable builds a Table from an in-memory header and records. Every record
// must match the header length.
func NewTable(columns []string, records [][]string) (*Table, error) {
	t := &Table{
		Columns:  columns,
		Records:  records,
		colIndex: make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		t.colIndex[col] = i
	}
	for i, rec := range records {
		if len(rec) != len(columns) {
			return nil, fmt.Errorf("record %d has %d fields, header has %d", i, len(rec), len(columns))
		}
	}
	return t, nil
}

// Load reads the male and female telemetry CSVs from dataDir, concatenates
// them (males first, preserving row order within each file), drops rows with
// an empty FID, and resets the row index. Both files must share a header.
func Load(dataDir string) (*Table, error) {
	male, err := readCSV(filepath.Join(dataDir, MaleFile))
	if err != nil {
		return nil, fmt.Errorf("load male observations: %w", err)
	}
	female, err := readCSV(filepath.Join(dataDir, FemaleFile))
	if err != nil {
		return nil, fmt.Errorf("load female observations: %w", err)
	}

	if len(male.Columns) != len(female.Columns) {
		return nil, fmt.Errorf("header mismatch between %s and %s: %d vs %d columns",
			MaleFile, FemaleFile, len(male.Columns), len(female.Columns))
	}
	for i, col := range male.Columns {
		if female.Columns[i] != col {
			return nil, fmt.Errorf("header mismatch at column %d: %q vs %q", i, col, female.Columns[i])
		}
	}

	t := &Table{
		Columns:  male.Columns,
		colIndex: male.colIndex,
	}

	fid, ok := t.colIndex[FIDColumn]
	if !ok {
		return nil, fmt.Errorf("required column %q not found in CSV header", FIDColumn)
	}

	// Concatenate and drop misformatted NA rows in one pass. Appending in
	// file order is the index reset: row numbering restarts from zero.
	for _, src := range [][][]string{male.Records, female.Records} {
		for _, rec := range src {
			if isMissing(rec[fid]) {
				continue
			}
			t.Records = append(t.Records, rec)
		}
	}

	if len(t.Records) == 0 {
		return nil, fmt.Errorf("no usable observations after dropping rows with missing %s", FIDColumn)
	}
	return t, nil
}

// NumRows returns the number of observations.
func (t *Table) NumRows() int { return len(t.Records) }

// ColumnIndex returns the position of column name, or an error when the
// header does not contain it.
func (t *Table) ColumnIndex(name string) (int, error) {
	idx, ok := t.colIndex[name]
	if !ok {
		return 0, fmt.Errorf("column %q not found in table", name)
	}
	return idx, nil
}

// StringColumn returns the raw values of one column.
func (t *Table) StringColumn(name string) ([]string, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(t.Records))
	for i, rec := range t.Records {
		out[i] = rec[idx]
	}
	return out, nil
}

// FloatColumn parses one column as float32 values.
func (t *Table) FloatColumn(name string) ([]float32, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(t.Records))
	for i, rec := range t.Records {
		v, err := parseFloat32(rec[idx])
		if err != nil {
			return nil, fmt.Errorf("parse %s row %d: %w", name, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Subjects returns the subject identifier of every row.
func (t *Table) Subjects() ([]string, error) {
	ids, err := t.StringColumn(SubjectColumn)
	if err != nil {
		return nil, err
	}
	for i := range ids {
		ids[i] = strings.TrimSpace(ids[i])
	}
	return ids, nil
}

// Features projects the table onto a numeric feature matrix, excluding the
// named columns. The returned kept slice lists the surviving column names in
// header order.
func (t *Table) Features(drop ...string) ([][]float32, []string, error) {
	dropped := make(map[string]bool, len(drop))
	for _, name := range drop {
		dropped[name] = true
	}

	var keptIdx []int
	var kept []string
	for i, col := range t.Columns {
		if dropped[col] {
			continue
		}
		keptIdx = append(keptIdx, i)
		kept = append(kept, col)
	}
	if len(keptIdx) == 0 {
		return nil, nil, fmt.Errorf("no feature columns left after dropping %v", drop)
	}

	features := make([][]float32, len(t.Records))
	for i, rec := range t.Records {
		row := make([]float32, len(keptIdx))
		for j, ci := range keptIdx {
			v, err := parseFloat32(rec[ci])
			if err != nil {
				return nil, nil, fmt.Errorf("parse %s row %d: %w", t.Columns[ci], i, err)
			}
			row[j] = v
		}
		features[i] = row
	}
	return features, kept, nil
}

// readCSV reads a whole CSV file into a Table, header first.
func readCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(all) < 1 {
		return nil, fmt.Errorf("%s is empty", filepath.Base(path))
	}

	t := &Table{
		Columns:  all[0],
		Records:  all[1:],
		colIndex: make(map[string]int, len(all[0])),
	}
	for i, col := range t.Columns {
		t.Columns[i] = strings.TrimSpace(col)
		t.colIndex[t.Columns[i]] = i
	}
	return t, nil
}

// isMissing reports whether a CSV cell holds a missing value marker.
func isMissing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "nan")
}
