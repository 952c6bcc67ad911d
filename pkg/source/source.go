// Package source opens exported activity files as tables. Delimited text,
// legacy Excel (.xls) and Office Open XML (.xlsx) exports are supported.
package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/tally/pkg/table"
)

type FileType string

const (
	Delimited FileType = "delimited"
	XLS       FileType = "xls"
	XLSX      FileType = "xlsx"
)

// DetectType determines the export format from the file extension.
func DetectType(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		return XLS
	case ".xlsx":
		return XLSX
	default:
		return Delimited
	}
}

type Loader struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the file at path. delimiter only applies to delimited text; a
// .tsv file is tab-delimited unless a delimiter other than comma is given.
func (l *Loader) Load(path string, delimiter rune) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read from file at '%s': %w", path, err)
	}
	return l.LoadBytes(data, path, delimiter)
}

// LoadBytes parses an export that has already been read. name is used for
// format detection and provenance.
func (l *Loader) LoadBytes(data []byte, name string, delimiter rune) (*table.Table, error) {
	fileType := DetectType(name)
	l.logger.Debug("detected file type", "type", fileType, "file", name)

	var (
		t   *table.Table
		err error
	)
	switch fileType {
	case XLS:
		t, err = readXLS(data, name)
	case XLSX:
		t, err = readXLSX(data, name)
	default:
		if delimiter == ',' && strings.EqualFold(filepath.Ext(name), ".tsv") {
			delimiter = '\t'
		}
		t, err = table.Read(bytes.NewReader(data), delimiter, name)
	}
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loaded table", "file", name, "columns", t.Width(), "rows", len(t.Rows))
	return t, nil
}

// LoadAll loads every path in order.
func (l *Loader) LoadAll(paths []string, delimiter rune) ([]*table.Table, error) {
	tables := make([]*table.Table, 0, len(paths))
	for _, p := range paths {
		t, err := l.Load(p, delimiter)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// fromCells turns spreadsheet rows into a table. The first non-empty row is
// the header; rows are padded or cut to its width and blank rows skipped.
func fromCells(rows [][]string, name string) (*table.Table, error) {
	start := 0
	for start < len(rows) && isBlank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, fmt.Errorf("%s: no data found in sheet", name)
	}

	header := trimTrailingEmpty(rows[start])
	t := &table.Table{Header: header, Source: name}
	for i := start + 1; i < len(rows); i++ {
		if isBlank(rows[i]) {
			continue
		}
		fields := make([]string, len(header))
		copy(fields, rows[i])
		t.Rows = append(t.Rows, table.Row{Fields: fields, Source: name, Line: i + 1})
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	return row[:end]
}
