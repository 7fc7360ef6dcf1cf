package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var table = Table{
	Sheet:   "Assets",
	Headers: []string{"id", "name", "serial_no"},
	Rows: [][]string{
		{"1", "Sofa, corner", ""},
		{"2", `TV "55"`, "SN-1"},
	},
}

func TestParseFormat(t *testing.T) {
	for raw, want := range map[string]Format{"": FormatCSV, "csv": FormatCSV, " XLSX ": FormatXLSX} {
		got, err := ParseFormat(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	assert.Equal(t, ".xlsx", FormatXLSX.Ext())
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, table))

	assert.Equal(t, "id,name,serial_no\n1,\"Sofa, corner\",\n2,\"TV \"\"55\"\"\",SN-1\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Assets", f.GetSheetName(0))
	rows, err := f.GetRows("Assets")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "name", "serial_no"}, rows[0])
	assert.Equal(t, []string{"2", `TV "55"`, "SN-1"}, rows[2])
}
