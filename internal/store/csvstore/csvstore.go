// Package csvstore implements the record-store readers over CSV files. Tables
// are re-read on every call so edits to the files show up without a restart;
// the stores never write.
package csvstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// table is a parsed CSV file with header-indexed access.
type table struct {
	index map[string]int
	rows  [][]string
}

// readTable loads and parses a CSV file. The first record is the header;
// a UTF-8 BOM on the first header cell is stripped. Short rows are padded so
// cell never panics on ragged input.
func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return &table{index: map[string]int{}}, nil
		}
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows %s: %w", path, err)
	}

	return &table{index: index, rows: rows}, nil
}

// cell returns the trimmed value of the named column for a row, empty when
// the column is missing or the row is short.
func (t *table) cell(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
