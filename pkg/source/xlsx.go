package source

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"github.com/yurifrl/tally/pkg/table"
)

func readXLSX(data []byte, name string) (*table.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: error opening workbook: %w", name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: no sheet found in workbook", name)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%s: error reading sheet %s: %w", name, sheets[0], err)
	}
	return fromCells(rows, name)
}
