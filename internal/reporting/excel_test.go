package reporting

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/stockbook/stockbook/internal/fiscal"
)

func TestWriteWorkbook(t *testing.T) {
	rows := []Row{{
		LocationCode: "01", LocationName: "main",
		ItemCode: "C-001", ItemName: "cable",
		Opening: 5, Inbound: 10, Book: 15, Reported: 12, Variance: -3, CarryForward: 15,
	}}
	window := fiscal.Window{Start: date(2025, 4, 1), End: date(2025, 4, 30)}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, "2025-04", window, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	require.Contains(t, title, "2025-04")

	header, err := f.GetCellValue(sheetName, "A4")
	require.NoError(t, err)
	require.Equal(t, "LOC_N", header)

	book, err := f.GetCellValue(sheetName, "I5")
	require.NoError(t, err)
	require.Equal(t, "15", book)

	variance, err := f.GetCellValue(sheetName, "K5")
	require.NoError(t, err)
	require.Equal(t, "-3", variance)
}
