package reports

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

var recapColumns = []string{"Name", "Role", "Present", "Late", "Half Day", "Overtime", "Permit", "Absent"}

// RenderPDF writes the recap under storage/reports and returns the
// file path.
func RenderPDF(recap *BranchRecap) (string, error) {
	if err := os.MkdirAll("storage/reports", 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join("storage/reports", fmt.Sprintf("recap-%s-%s.pdf", recap.BranchID, recap.MonthCode))

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Attendance Recap")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Branch: %s", recap.BranchName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Month: %s", recap.MonthCode))
	pdf.Ln(10)

	widths := []float64{70, 30, 25, 25, 25, 25, 25, 25}
	pdf.SetFont("Helvetica", "B", 11)
	for i, col := range recapColumns {
		pdf.CellFormat(widths[i], 8, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, m := range recap.Members {
		cells := []string{
			m.Name, m.Role,
			fmt.Sprintf("%d", m.Present), fmt.Sprintf("%d", m.Late),
			fmt.Sprintf("%d", m.HalfDay), fmt.Sprintf("%d", m.Overtime),
			fmt.Sprintf("%d", m.Permit), fmt.Sprintf("%d", m.Absent),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 8, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

// RenderXLSX streams the recap as a workbook, one row per member.
func RenderXLSX(recap *BranchRecap, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Recap"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "Branch")
	f.SetCellValue(sheet, "B1", recap.BranchName)
	f.SetCellValue(sheet, "A2", "Month")
	f.SetCellValue(sheet, "B2", recap.MonthCode)

	headerRow := 4
	for i, col := range recapColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, col)
	}

	for r, m := range recap.Members {
		values := []any{m.Name, m.Role, m.Present, m.Late, m.HalfDay, m.Overtime, m.Permit, m.Absent}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, headerRow+1+r)
			if err != nil {
				return err
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	_, err := f.WriteTo(w)
	return err
}
