package reporting

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/stockbook/stockbook/internal/fiscal"
)

const sheetName = "MonthlyReport"

var workbookHeaders = []string{
	"LOC_N", "LOC_NAME", "CATEGORY", "ITEM_CODE", "ITEM_NAME",
	"OPENING", "USAGE", "INBOUND", "BOOK", "COUNTED", "VARIANCE", "CARRY",
}

// WriteWorkbook renders the period report as an xlsx workbook. Layout
// follows the long-standing close sheet: title on the first row, the
// header band on the fourth, one line per (location, item) pair.
func WriteWorkbook(w io.Writer, label string, window fiscal.Window, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s  %s ~ %s",
		label, window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    boxBorder(),
	})
	if err != nil {
		return err
	}
	numFmt := "#,##0"
	numStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt, Border: boxBorder()})
	if err != nil {
		return err
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Border: boxBorder()})
	if err != nil {
		return err
	}

	const headerRow = 4
	for col, h := range workbookHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for i, row := range rows {
		values := []any{
			row.LocationCode, row.LocationName, row.Category, row.ItemCode, row.ItemName,
			row.Opening, row.Usage, row.Inbound, row.Book, row.Reported, row.Variance, row.CarryForward,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, headerRow+1+i)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
			style := cellStyle
			if col >= 5 {
				style = numStyle
			}
			if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

func boxBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}
}
