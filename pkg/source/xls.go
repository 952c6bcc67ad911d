package source

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/yurifrl/tally/pkg/table"
)

func readXLS(data []byte, name string) (*table.Table, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%s: error creating workbook: %w", name, err)
	}
	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%s: no sheet found in workbook", name)
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return fromCells(rows, name)
}
