package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Source struct {
	Path string
	// Sheet selects a worksheet by name; empty means the workbook's active sheet.
	Sheet string
	// HeaderRows are skipped before mapping. The import historically read
	// every row, so the default is 0.
	HeaderRows int
}

// Load reads the tabular source and builds the catalog. The format follows the
// file extension: .xlsx/.xlsm via excelize, .csv via encoding/csv.
func Load(src Source) (*Catalog, error) {
	path := strings.TrimSpace(src.Path)
	if path == "" {
		return nil, errors.New("catalog path required")
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(path, src.Sheet)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", path)
	}
	if err != nil {
		return nil, err
	}

	if src.HeaderRows > 0 {
		if src.HeaderRows >= len(rows) {
			rows = nil
		} else {
			rows = rows[src.HeaderRows:]
		}
	}
	return New(FromRows(rows)), nil
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSpace(sheet)
	if name == "" {
		name = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if name == "" {
		return nil, fmt.Errorf("workbook %s has no active sheet", path)
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}
