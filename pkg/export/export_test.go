package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleDataset() Dataset {
	return Dataset{
		Title:   "Schedules 2025-03",
		Headers: []string{"scheduleId", "scheduleType", "startDate"},
		Rows: []map[string]string{
			{"scheduleId": "1", "scheduleType": "수강신청", "startDate": "2025-03-01"},
			{"scheduleId": "2", "scheduleType": "grade, entry", "startDate": "2025-03-10"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter(false).Render(scheduleDataset())
	require.NoError(t, err)
	assert.Equal(t, "scheduleId,scheduleType,startDate\n1,수강신청,2025-03-01\n2,\"grade, entry\",2025-03-10\n", string(out))
}

func TestCSVExporterWritesBOM(t *testing.T) {
	out, err := NewCSVExporter(true).Render(scheduleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, utf8BOM))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter(false).Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := scheduleDataset()
	data.Rows[0]["scheduleType"] = "course-registration"
	out, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
