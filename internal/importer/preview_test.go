package importer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreview_CapsRowsButCountsAll(t *testing.T) {
	names := make([]string, 15)
	for i := range names {
		names[i] = fmt.Sprintf("asset-%d", i)
	}
	names[2] = ""

	v := newTestValidator()
	res := Preview(assetRecords(names...), func(rec Record) (interface{}, []string) {
		return v.Asset(rec)
	})

	assert.Equal(t, 15, res.TotalRows)
	assert.Len(t, res.Preview, PreviewRows)
	assert.Equal(t, []string{"Row 3: Missing required field 'name'"}, res.Errors)
}

func TestPreview_Empty(t *testing.T) {
	res := Preview(nil, func(rec Record) (interface{}, []string) { return nil, nil })
	assert.Equal(t, 0, res.TotalRows)
	assert.NotNil(t, res.Preview)
	assert.NotNil(t, res.Errors)
}

func TestTemplate_AssetLayout(t *testing.T) {
	tpl := newTestValidator().Template(EntityAsset)

	assert.Equal(t, []string{"name [REQUIRED]", "brand", "serial_no", "category [REQUIRED]", "status"}, tpl.Headers)

	lines := strings.Split(strings.TrimRight(tpl.Template, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], `"INSTRUCTIONS:`))
	assert.Equal(t, `"name [REQUIRED]","brand","serial_no","category [REQUIRED]","status"`, lines[1])
	assert.Equal(t, `"Air Conditioner","Daikin","AC-001","hvac","working"`, lines[2])
}

func TestTemplate_RoundTripsThroughParse(t *testing.T) {
	v := newTestValidator()
	for _, e := range []Entity{EntityProperty, EntityAsset, EntityRentalUnit} {
		tpl := v.Template(e)
		rows := Parse(tpl.Template, true)
		assert.Len(t, rows, 2, string(e))
	}
}

func TestTemplate_UnitInstructionsOmitOccupied(t *testing.T) {
	tpl := newTestValidator().Template(EntityRentalUnit)
	first := strings.SplitN(tpl.Template, "\n", 2)[0]
	assert.NotContains(t, first, "occupied")
}

func TestWriteQuoted_DoublesQuotes(t *testing.T) {
	var b strings.Builder
	writeQuoted(&b, []string{`12" TV`, "x"})
	assert.Equal(t, "\"12\"\" TV\",\"x\"\n", b.String())
}
