package site

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	checklist "github.com/gregori0101/infrasites-sub001/internal/checklist/domain"
)

// RowError reports one malformed row by its data-row ordinal (the first
// row under the header is 1). Malformed rows never abort the import;
// valid rows around them are still accepted.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ErrNoRows is returned when the workbook has no data rows.
var ErrNoRows = errors.New("site import: no data rows")

// ParseWorkbook reads the first sheet of an xlsx workbook with the columns
// site, uf, tipo (header on row 1) and returns the accepted sites plus one
// error per rejected row.
func ParseWorkbook(r io.Reader) ([]Site, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("site import: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrNoRows
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("site import: read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil, ErrNoRows
	}

	var sites []Site
	var rowErrs []RowError
	for i, row := range rows[1:] {
		rowNumber := i + 1
		s, err := parseRow(row)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNumber, Message: err.Error()})
			continue
		}
		sites = append(sites, s)
	}
	return sites, rowErrs, nil
}

func parseRow(row []string) (Site, error) {
	get := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	code := strings.ToUpper(get(0))
	uf := strings.ToUpper(get(1))
	tipo := get(2)

	if len(code) != 5 {
		return Site{}, fmt.Errorf("site code %q must be exactly 5 characters", code)
	}
	region, ok := checklist.NormalizeRegion(uf)
	if !ok {
		return Site{}, fmt.Errorf("unknown region code %q", uf)
	}
	if tipo == "" {
		return Site{}, errors.New("site type is required")
	}
	return Site{Code: code, Region: region, Type: tipo}, nil
}
