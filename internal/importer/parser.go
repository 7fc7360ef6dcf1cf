package importer

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFile = errors.New("unsupported import file type")

// Parse splits raw CSV text into data rows. Blank lines and instruction lines
// are dropped, then the first remaining line when hasHeader is set.
func Parse(raw string, hasHeader bool) [][]string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if skipLine(line) {
			continue
		}
		lines = append(lines, line)
	}
	if hasHeader && len(lines) > 0 {
		lines = lines[1:]
	}

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, parseLine(line))
	}
	return rows
}

func skipLine(line string) bool {
	return line == "" || strings.Contains(strings.ToLower(line), "instructions")
}

func parseLine(line string) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	record, err := r.Read()
	if err != nil {
		return strings.Split(line, ",")
	}
	return record
}

// ParseFile reads an uploaded .csv or .xlsx file into data rows with the same
// exclusions as Parse. Only the first sheet of a workbook is read.
func ParseFile(r io.Reader, filename string, hasHeader bool) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(err, "read csv upload")
		}
		return Parse(string(raw), hasHeader), nil
	case ".xlsx":
		return parseWorkbook(r, hasHeader)
	default:
		return nil, ErrUnsupportedFile
	}
}

func parseWorkbook(r io.Reader, hasHeader bool) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer f.Close()

	sheetRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, errors.Wrap(err, "read first sheet")
	}

	var rows [][]string
	for _, cells := range sheetRows {
		if skipLine(strings.TrimSpace(strings.Join(cells, ""))) {
			continue
		}
		rows = append(rows, cells)
	}
	if hasHeader && len(rows) > 0 {
		rows = rows[1:]
	}
	return rows, nil
}
