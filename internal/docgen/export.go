// Package docgen renders the submission artifacts handed to the technician:
// a PDF summary and an XLSX workbook of the checklist record.
package docgen

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	checklist "github.com/gregori0101/infrasites-sub001/internal/checklist/domain"
)

// FileNames returns the artifact file names for a record.
func FileNames(rec *checklist.ChecklistRecord) (pdfName, xlsxName string) {
	stamp := rec.SubmittedAt
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}
	base := fmt.Sprintf("checklist_%s_%s", rec.SiteCode, stamp.Format("20060102"))
	return base + ".pdf", base + ".xlsx"
}

// BuildChecklistPDF renders the checklist summary PDF.
func BuildChecklistPDF(rec *checklist.ChecklistRecord) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Site Inspection Checklist")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Site: %s", rec.SiteCode))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Region: %s", rec.Region))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Technician: %s", rec.TechnicianName))
	pdf.Ln(5)
	if !rec.SubmittedAt.IsZero() {
		pdf.Cell(0, 6, fmt.Sprintf("Submitted: %s", rec.SubmittedAt.Format(time.RFC3339)))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Cabinets: %d", rec.CabinetCount))
	pdf.Ln(8)

	// Cabinet table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(15, 6, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Type", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Converter", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Voltage", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Banks", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Photos", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for i, cab := range rec.Cabinets {
		pdf.CellFormat(15, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, string(cab.Type), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, converterLabel(cab.Converter), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, string(cab.Converter.Voltage), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", cab.Batteries.BankCount), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d uploaded", uploadedCount(cab)), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	if rec.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Notes")
		pdf.Ln(5)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, rec.Notes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildChecklistXLSX renders the checklist workbook.
func BuildChecklistXLSX(rec *checklist.ChecklistRecord) ([]byte, error) {
	f := excelize.NewFile()
	siteSheet := "site"
	cabinetSheet := "cabinets"
	bankSheet := "battery_banks"
	f.SetSheetName("Sheet1", siteSheet)
	f.NewSheet(cabinetSheet)
	f.NewSheet(bankSheet)

	_ = f.SetCellValue(siteSheet, "A1", "Site Inspection Checklist")
	_ = f.SetCellValue(siteSheet, "A3", "Site")
	_ = f.SetCellValue(siteSheet, "B3", rec.SiteCode)
	_ = f.SetCellValue(siteSheet, "A4", "Region")
	_ = f.SetCellValue(siteSheet, "B4", string(rec.Region))
	_ = f.SetCellValue(siteSheet, "A5", "Technician")
	_ = f.SetCellValue(siteSheet, "B5", rec.TechnicianName)
	_ = f.SetCellValue(siteSheet, "A6", "Submitted")
	if !rec.SubmittedAt.IsZero() {
		_ = f.SetCellValue(siteSheet, "B6", rec.SubmittedAt.Format(time.RFC3339))
	}
	_ = f.SetCellValue(siteSheet, "A7", "Cabinets")
	_ = f.SetCellValue(siteSheet, "B7", rec.CabinetCount)
	_ = f.SetCellValue(siteSheet, "A8", "Notes")
	_ = f.SetCellValue(siteSheet, "B8", rec.Notes)

	_ = f.SetCellValue(cabinetSheet, "A1", "Cabinet")
	_ = f.SetCellValue(cabinetSheet, "B1", "Type")
	_ = f.SetCellValue(cabinetSheet, "C1", "Protected")
	_ = f.SetCellValue(cabinetSheet, "D1", "Converter")
	_ = f.SetCellValue(cabinetSheet, "E1", "Voltage")
	_ = f.SetCellValue(cabinetSheet, "F1", "Load (A)")
	_ = f.SetCellValue(cabinetSheet, "G1", "Bank Count")
	for i, cab := range rec.Cabinets {
		row := i + 2
		_ = f.SetCellValue(cabinetSheet, fmt.Sprintf("A%d", row), i+1)
		_ = f.SetCellValue(cabinetSheet, fmt.Sprintf("B%d", row), string(cab.Type))
		_ = f.SetCellValue(cabinetSheet, fmt.Sprintf("C%d", row), cab.Protected)
		_ = f.SetCellValue(cabinetSheet, fmt.Sprintf("D%d", row), converterLabel(cab.Converter))
		_ = f.SetCellValue(cabinetSheet, fmt.Sprintf("E%d", row), string(cab.Converter.Voltage))
		_ = f.SetCellValue(cabinetSheet, fmt.Sprintf("F%d", row), cab.Converter.LoadAmps)
		_ = f.SetCellValue(cabinetSheet, fmt.Sprintf("G%d", row), cab.Batteries.BankCount)
	}

	_ = f.SetCellValue(bankSheet, "A1", "Cabinet")
	_ = f.SetCellValue(bankSheet, "B1", "Bank")
	_ = f.SetCellValue(bankSheet, "C1", "Type")
	_ = f.SetCellValue(bankSheet, "D1", "Manufacturer")
	_ = f.SetCellValue(bankSheet, "E1", "Capacity (Ah)")
	_ = f.SetCellValue(bankSheet, "F1", "Condition")
	row := 2
	for i, cab := range rec.Cabinets {
		for j, bank := range cab.Batteries.Banks {
			_ = f.SetCellValue(bankSheet, fmt.Sprintf("A%d", row), i+1)
			_ = f.SetCellValue(bankSheet, fmt.Sprintf("B%d", row), j+1)
			_ = f.SetCellValue(bankSheet, fmt.Sprintf("C%d", row), string(bank.Type))
			_ = f.SetCellValue(bankSheet, fmt.Sprintf("D%d", row), string(bank.Manufacturer))
			if bank.CapacityAh != 0 {
				_ = f.SetCellValue(bankSheet, fmt.Sprintf("E%d", row), int(bank.CapacityAh))
			}
			_ = f.SetCellValue(bankSheet, fmt.Sprintf("F%d", row), string(bank.Condition))
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func converterLabel(conv checklist.ConverterRecord) string {
	if conv.Manufacturer == checklist.ManufacturerOther && conv.ManufacturerLabel != "" {
		return conv.ManufacturerLabel
	}
	return string(conv.Manufacturer)
}

func uploadedCount(cab checklist.CabinetRecord) int {
	count := 0
	for _, ref := range []checklist.PhotoReference{
		cab.PanoramicPhoto, cab.TransmissionPhoto, cab.AccessPhoto,
		cab.Converter.PanoramicPhoto, cab.Converter.ModulesPhoto,
		cab.Batteries.BankPhoto,
	} {
		if ref.Uploaded() {
			count++
		}
	}
	return count
}
