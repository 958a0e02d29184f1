package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
)

const (
	columnName  = "name"
	columnEmail = "email"
)

// Parse reads recipient rows from an uploaded file. The format is chosen by the
// filename extension. Only the first sheet of a workbook is read.
// Fully blank rows are skipped; rows with a blank name or email are kept as is.
func Parse(r io.Reader, filename string) ([]Row, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(r)
	case ".csv":
		records, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, errors.Join(ErrInvalidFile, err)
	}

	return mapRecords(records)
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

func mapRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s, %s", ErrMissingColumn, columnName, columnEmail)
	}

	nameIdx, emailIdx := -1, -1
	fold := cases.Fold()
	for i, h := range records[0] {
		switch fold.String(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case columnName:
			if nameIdx < 0 {
				nameIdx = i
			}
		case columnEmail:
			if emailIdx < 0 {
				emailIdx = i
			}
		}
	}

	var missing []string
	if nameIdx < 0 {
		missing = append(missing, columnName)
	}
	if emailIdx < 0 {
		missing = append(missing, columnEmail)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		rows = append(rows, Row{
			Name:  strings.TrimSpace(cell(rec, nameIdx)),
			Email: strings.TrimSpace(cell(rec, emailIdx)),
		})
	}
	return rows, nil
}

func cell(rec []string, idx int) string {
	if idx < len(rec) {
		return rec[idx]
	}
	return ""
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
