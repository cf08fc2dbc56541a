// Package importer reads sieve analysis sheets from xlsx workbooks.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"Civica/internal/calc/gradation"
	"Civica/internal/calc/units"
)

var ErrEmptySheet = errors.New("sheet has no samples")

// Parse reads the first sheet. Row 1 is the header "sample, total, <sieve
// labels...>"; each later row is one sample. Unparsable cells count as 0 and
// rows with no cells at all are skipped.
func Parse(r io.Reader) ([]gradation.NamedSample, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) ([]gradation.NamedSample, error) {
	if len(rows) < 2 {
		return nil, ErrEmptySheet
	}
	header := rows[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("header needs sample and total columns, got %d", len(header))
	}
	labels := make([]string, len(header))
	for i, h := range header {
		labels[i] = strings.TrimSpace(h)
	}

	var out []gradation.NamedSample
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		s := gradation.NamedSample{
			Name:   fmt.Sprintf("row %d", i+2),
			Sample: gradation.Sample{Retained: make(map[string]float64)},
		}
		if name := strings.TrimSpace(row[0]); name != "" {
			s.Name = name
		}
		if len(row) > 1 {
			s.TotalWeight = units.Coerce(strings.TrimSpace(row[1]))
		}
		for col := 2; col < len(labels) && col < len(row); col++ {
			if labels[col] == "" || strings.TrimSpace(row[col]) == "" {
				continue
			}
			s.Retained[labels[col]] = units.Coerce(strings.TrimSpace(row[col]))
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, ErrEmptySheet
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
