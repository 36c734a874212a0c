// Package export writes portfolio holdings to an XLSX workbook.
package export

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/cryptopal/assistant/internal/domain"
)

const holdingsSheet = "Holdings"

// holdingsColumns defines the data columns in order. Column widths are in
// Excel character units.
var holdingsColumns = []struct {
	header string
	width  float64
}{
	{header: "Coin", width: 18},
	{header: "Symbol", width: 10},
	{header: "Amount", width: 14},
	{header: "Price (USD)", width: 14},
	{header: "Value (USD)", width: 14},
}

// buildRows converts holdings into spreadsheet rows, one per holding,
// followed by a blank row and a total row.
func buildRows(holdings []domain.Holding, total float64) [][]any {
	rows := lo.Map(holdings, func(h domain.Holding, _ int) []any {
		return []any{h.Coin.Name, h.Coin.Symbol, h.Amount, h.LastPrice, h.Value}
	})
	rows = append(rows, []any{}, []any{"Total", "", "", "", total})
	return rows
}

// WriteXLSX writes holdings and their total value to an XLSX file at path.
// The file is overwritten if it exists.
func WriteXLSX(holdings []domain.Holding, total float64, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", holdingsSheet)

	for i, col := range holdingsColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("building header cell: %w", err)
		}
		if err := f.SetCellValue(holdingsSheet, cell, col.header); err != nil {
			return fmt.Errorf("writing header %q: %w", col.header, err)
		}
		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(holdingsSheet, colName, colName, col.width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	for r, row := range buildRows(holdings, total) {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("building data cell: %w", err)
			}
			if err := f.SetCellValue(holdingsSheet, cell, value); err != nil {
				return fmt.Errorf("writing cell %s: %w", cell, err)
			}
		}
	}

	generated := fmt.Sprintf("Generated %s", time.Now().UTC().Format("2006-01-02 15:04 UTC"))
	footer, err := excelize.CoordinatesToCellName(1, len(holdings)+5)
	if err != nil {
		return fmt.Errorf("building footer cell: %w", err)
	}
	if err := f.SetCellValue(holdingsSheet, footer, generated); err != nil {
		return fmt.Errorf("writing footer: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}
