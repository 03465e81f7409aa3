package site

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	checklist "github.com/gregori0101/infrasites-sub001/internal/checklist/domain"
)

func buildWorkbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	header := []string{"site", "uf", "tipo"}
	for col, value := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			t.Fatalf("set header: %v", err)
		}
	}
	for i, row := range rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return &buf
}

func TestParseWorkbookReportsRowsIndividually(t *testing.T) {
	buf := buildWorkbook(t, [][]string{
		{"AMBEL", "AM", "Outdoor"},
		{"X", "AM", "Outdoor"},
	})

	sites, rowErrs, err := ParseWorkbook(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(sites) != 1 {
		t.Fatalf("expected one accepted site, got %d", len(sites))
	}
	if sites[0].Code != "AMBEL" || sites[0].Region != checklist.RegionAM {
		t.Fatalf("unexpected site: %+v", sites[0])
	}
	if len(rowErrs) != 1 {
		t.Fatalf("expected one row error, got %d", len(rowErrs))
	}
	if rowErrs[0].Row != 2 {
		t.Fatalf("error must cite row 2, got %d", rowErrs[0].Row)
	}
	if !strings.Contains(rowErrs[0].Message, "5 characters") {
		t.Fatalf("error must cite the 5-character rule: %s", rowErrs[0].Message)
	}
}

func TestParseWorkbookRejectsBadRegionAndType(t *testing.T) {
	buf := buildWorkbook(t, [][]string{
		{"AMBEL", "ZZ", "Outdoor"},
		{"PABEL", "PA", ""},
		{"rrbvi", "RR", "Indoor"},
	})

	sites, rowErrs, err := ParseWorkbook(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(sites) != 1 {
		t.Fatalf("expected one accepted site, got %d: %+v", len(sites), sites)
	}
	if sites[0].Code != "RRBVI" {
		t.Fatalf("codes must be normalized to upper case: %+v", sites[0])
	}
	if len(rowErrs) != 2 {
		t.Fatalf("expected two row errors, got %+v", rowErrs)
	}
	if rowErrs[0].Row != 1 || rowErrs[1].Row != 2 {
		t.Fatalf("row numbers wrong: %+v", rowErrs)
	}
}

func TestParseWorkbookEmpty(t *testing.T) {
	buf := buildWorkbook(t, nil)
	if _, _, err := ParseWorkbook(buf); !errors.Is(err, ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}
