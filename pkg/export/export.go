// Package export renders tabular listings as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("format must be csv or xlsx")

// ParseFormat defaults to csv.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", ErrUnknownFormat
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Ext() string {
	return "." + string(f)
}

type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]string
}

func Write(w io.Writer, f Format, t Table) error {
	if f == FormatXLSX {
		return writeXLSX(w, t)
	}
	return writeCSV(w, t)
}

func writeCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return errors.Wrap(err, "write csv rows")
	}
	return nil
}

func writeXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.Wrap(err, "name sheet")
	}

	writeRow := func(idx int, cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, idx)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(cells))
		for i, c := range cells {
			values[i] = c
		}
		return f.SetSheetRow(sheet, cell, &values)
	}

	if err := writeRow(1, t.Headers); err != nil {
		return errors.Wrap(err, "write xlsx header")
	}
	for i, row := range t.Rows {
		if err := writeRow(i+2, row); err != nil {
			return errors.Wrapf(err, "write xlsx row %d", i+1)
		}
	}

	return errors.Wrap(f.Write(w), "write workbook")
}
