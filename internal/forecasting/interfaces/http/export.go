package http

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"forecast-cloud/internal/forecasting/application"
)

// BuildPositionPDF renders a minimal PDF for a company position.
func BuildPositionPDF(position *application.CompanyPositionResponse) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Company Position")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Company: %s", position.CompanyName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("From: %s", position.StartDate.Format(dateLayout)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("To (exclusive): %s", position.EndDate.Format(dateLayout)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Position (MWh): %s", position.TotalPositionMWh.String()))
	pdf.Ln(8)

	// Breakdown table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Power Plant", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Country", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Production (MWh)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Forecasts", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, entry := range position.PowerPlantPositions {
		pdf.CellFormat(60, 6, entry.PowerPlantName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, entry.Country, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, entry.TotalProductionMWh.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", entry.ForecastCount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildPositionXLSX renders a minimal XLSX for a company position.
func BuildPositionXLSX(position *application.CompanyPositionResponse) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	breakdownSheet := "breakdown"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(breakdownSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Company Position")
	_ = f.SetCellValue(summarySheet, "A3", "Company")
	_ = f.SetCellValue(summarySheet, "B3", position.CompanyName)
	_ = f.SetCellValue(summarySheet, "A4", "From")
	_ = f.SetCellValue(summarySheet, "B4", position.StartDate.Format(dateLayout))
	_ = f.SetCellValue(summarySheet, "A5", "To (exclusive)")
	_ = f.SetCellValue(summarySheet, "B5", position.EndDate.Format(dateLayout))
	_ = f.SetCellValue(summarySheet, "A6", "Total Position (MWh)")
	_ = f.SetCellValue(summarySheet, "B6", position.TotalPositionMWh.String())

	_ = f.SetCellValue(breakdownSheet, "A1", "Power Plant")
	_ = f.SetCellValue(breakdownSheet, "B1", "Country")
	_ = f.SetCellValue(breakdownSheet, "C1", "Production (MWh)")
	_ = f.SetCellValue(breakdownSheet, "D1", "Forecast Count")
	for i, entry := range position.PowerPlantPositions {
		row := i + 2
		_ = f.SetCellValue(breakdownSheet, fmt.Sprintf("A%d", row), entry.PowerPlantName)
		_ = f.SetCellValue(breakdownSheet, fmt.Sprintf("B%d", row), entry.Country)
		_ = f.SetCellValue(breakdownSheet, fmt.Sprintf("C%d", row), entry.TotalProductionMWh.String())
		_ = f.SetCellValue(breakdownSheet, fmt.Sprintf("D%d", row), entry.ForecastCount)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
