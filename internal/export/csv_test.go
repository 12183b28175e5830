package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"cvportal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCVRecords(t *testing.T) {
	at := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	records := []models.CVRecord{
		{ID: 2, Name: "Jane", Surname: "O'Neil", Email: "jane@x.com", Position: "Analyst, Senior", Department: "SAP", Experience: 7, Status: models.StatusActive, SubmittedAt: at},
		{ID: 1, Name: "John", Email: "john@x.com", Position: `Dev "Go"`, Status: models.StatusPending, SubmittedAt: at.Add(-time.Hour)},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCVRecords(&buf, records))

	assert.Contains(t, buf.String(), `"Analyst, Senior"`)
	assert.Contains(t, buf.String(), `"Dev ""Go"""`)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, cvColumns, rows[0])
	assert.Equal(t, []string{"2", "Jane", "O'Neil", "jane@x.com", "", "Analyst, Senior", "SAP", "7", "active", "2024-03-05T09:30:00Z"}, rows[1])
	assert.Equal(t, "1", rows[2][0])
	assert.Equal(t, `Dev "Go"`, rows[2][5])
}

func TestWriteCVRecords_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCVRecords(&buf, nil))
	assert.Equal(t, "id,name,surname,email,phone,position,department,experience,status,submittedAt\n", buf.String())
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "cv-records-20240305-093000.csv", Filename(time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)))
}
