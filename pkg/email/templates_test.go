package email

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk_backend/pkg/config"
)

func TestTemplatesRender(t *testing.T) {
	tmpl, err := loadTemplates()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "import_summary.html", ImportSummaryData{
		Name:       "Aisha",
		Entity:     "rental_unit",
		Outcome:    "rolled_back",
		TotalRows:  3,
		Failed:     1,
		Errors:     []string{"Row 2: Missing required field 'currency'"},
		FinishedAt: time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Import rolled back")
	assert.Contains(t, buf.String(), "rental unit import finished on 04 Mar 2025 10:30")
	assert.Contains(t, buf.String(), "Missing required field &#39;currency&#39;")

	buf.Reset()
	err = tmpl.ExecuteTemplate(&buf, "occupancy_digest.html", OccupancyDigestData{
		Name:          "Aisha",
		Date:          time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC),
		Properties:    []OccupancyLine{{PropertyName: "Coral House", TotalUnits: 4, Occupied: 3}},
		TotalUnits:    4,
		OccupiedUnits: 3,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "3 of 4 units are occupied as of 03 Mar 2025")
	assert.Contains(t, buf.String(), "Coral House")
}

func TestNewEmailServiceRequiresKey(t *testing.T) {
	_, err := NewEmailService(config.NotifyConfig{SendGridFromEmail: "noreply@rentdesk.app"})
	assert.Error(t, err)
}
