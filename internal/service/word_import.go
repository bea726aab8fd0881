package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ImportRow is one parsed line of a word import file. Level is raw and may be empty.
type ImportRow struct {
	Term  string
	Hint  string
	Level string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectDelimiter picks the delimiter by extension, then by counting tabs vs commas in the first line.
func DetectDelimiter(filename string, data []byte) rune {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tsv":
		return '\t'
	case ".csv":
		return ','
	}
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	if bytes.Count(first, []byte{'\t'}) > bytes.Count(first, []byte{','}) {
		return '\t'
	}
	return ','
}

// ParseWordImport parses CSV or TSV text into rows. A first line naming term, hint or
// level columns is treated as a header; otherwise columns are term, hint, level.
func ParseWordImport(data []byte, filename string) ([]ImportRow, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = DetectDelimiter(filename, data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed import file: %w", err)
		}
		if isBlankRecord(rec) {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, nil
	}

	termIdx, hintIdx, levelIdx := 0, 1, 2
	start := 0
	if hdr, ok := headerColumns(records[0]); ok {
		termIdx, hintIdx, levelIdx = hdr["term"], hdr["hint"], hdr["level"]
		start = 1
	}

	rows := make([]ImportRow, 0, len(records)-start)
	for _, rec := range records[start:] {
		row := ImportRow{
			Term:  cell(rec, termIdx),
			Hint:  cell(rec, hintIdx),
			Level: strings.ToLower(cell(rec, levelIdx)),
		}
		if row.Term != "" {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// headerColumns maps the known column names to their index; missing columns map to -1.
func headerColumns(rec []string) (map[string]int, bool) {
	cols := map[string]int{"term": -1, "hint": -1, "level": -1}
	found := false
	for i, c := range rec {
		name := strings.ToLower(strings.TrimSpace(c))
		if idx, ok := cols[name]; ok && idx == -1 {
			cols[name] = i
			found = true
		}
	}
	return cols, found
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func isBlankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
