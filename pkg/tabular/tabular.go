// Package tabular reads CSV and XLSX uploads into header-keyed rows.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Row maps lower-cased, trimmed header names to trimmed cell values.
type Row map[string]string

func (r Row) Get(key string) string {
	return r[key]
}

// Read parses a .csv or .xlsx file. Only the first sheet of a workbook is read.
// Blank lines are skipped and do not count as rows.
func Read(filename string, r io.Reader) ([]string, []Row, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return ReadCSV(r)
	case strings.HasSuffix(lower, ".xlsx"):
		return ReadExcel(r)
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
}

func ReadCSV(r io.Reader) ([]string, []Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	headers = normalizeHeaders(headers)

	var rows []Row
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if row := toRow(headers, rec); row != nil {
			rows = append(rows, row)
		}
	}
	return headers, rows, nil
}

func ReadExcel(r io.Reader) ([]string, []Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets found in Excel file")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("file is empty")
	}

	headers := normalizeHeaders(records[0])
	var rows []Row
	for _, rec := range records[1:] {
		if row := toRow(headers, rec); row != nil {
			rows = append(rows, row)
		}
	}
	return headers, rows, nil
}

// RequireHeaders fails when any of want is missing from headers.
func RequireHeaders(headers []string, want ...string) error {
	have := make(map[string]bool, len(headers))
	for _, h := range headers {
		have[h] = true
	}
	var missing []string
	for _, w := range want {
		if !have[w] {
			missing = append(missing, w)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func normalizeHeaders(in []string) []string {
	out := make([]string, len(in))
	for i, h := range in {
		out[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	return out
}

func toRow(headers, rec []string) Row {
	row := make(Row, len(headers))
	blank := true
	for i, h := range headers {
		if i >= len(rec) {
			break
		}
		v := strings.TrimSpace(rec[i])
		if v != "" {
			blank = false
		}
		row[h] = v
	}
	if blank {
		return nil
	}
	return row
}
