package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\uFEFF"

// table is a header row plus data rows padded to the header width.
type table struct {
	header []string
	rows   [][]string
}

func (t table) column(name string) (int, bool) {
	for i, column := range t.header {
		if column == name {
			return i, true
		}
	}
	return -1, false
}

func (t table) requireColumns(kind string, names ...string) ([]int, error) {
	indexes := make([]int, 0, len(names))
	for _, name := range names {
		i, ok := t.column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s needs column %q, found %q", domain.ErrMissingColumn, kind, name, t.header)
		}
		indexes = append(indexes, i)
	}
	return indexes, nil
}

func readTable(path string, sheet string) (table, error) {
	var raw [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		raw, err = readWorkbook(path, sheet)
	case ".csv":
		raw, err = readCSV(path)
	default:
		return table{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return table{}, err
	}

	return newTable(raw)
}

func newTable(raw [][]string) (table, error) {
	if len(raw) == 0 {
		return table{}, errors.New("sheet is empty")
	}

	header := make([]string, len(raw[0]))
	for i, cell := range raw[0] {
		header[i] = strings.TrimSpace(cell)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	rows := make([][]string, 0, len(raw)-1)
	for _, row := range raw[1:] {
		if isBlank(row) {
			continue
		}
		padded := make([]string, len(header))
		copy(padded, row)
		rows = append(rows, padded)
	}

	return table{header: header, rows: rows}, nil
}

func readWorkbook(path string, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheet, path, err)
	}

	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", path, err)
		}
		rows = append(rows, record)
	}

	return rows, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
