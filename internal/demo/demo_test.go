package demo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, v string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, v)
	require.NoError(t, err)
	return ts
}

func TestGenerateWeeklyRule(t *testing.T) {
	records, err := Generate(Options{
		Rule:       "FREQ=WEEKLY;BYDAY=SA",
		Start:      mustTime(t, "2026-09-05T11:00:00Z"),
		WindowDays: 21,
		Title:      "Farmers market",
		Location:   "Town square",
		Lat:        52.52,
		Lon:        13.405,
	})
	require.NoError(t, err)

	// 2026-09-05 is a Saturday; a 21-day window covers four Saturdays.
	require.Len(t, records, 4)
	assert.Equal(t, "demo-001", records[0].ID)
	assert.Equal(t, "2026-09-05T11:00:00Z", records[0].Start)
	assert.Equal(t, "2026-09-26T11:00:00Z", records[3].Start)
	assert.Equal(t, "Farmers market", records[0].Title)
	assert.Equal(t, "Town square", records[0].Venue.Name)
	assert.True(t, records[0].Demo)
}

func TestGenerateDeterministic(t *testing.T) {
	opts := Options{
		Rule:       "FREQ=DAILY",
		Start:      mustTime(t, "2026-09-01T09:00:00Z"),
		WindowDays: 7,
	}

	first, err := Generate(opts)
	require.NoError(t, err)
	second, err := Generate(opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateCap(t *testing.T) {
	records, err := Generate(Options{
		Rule:       "FREQ=DAILY",
		Start:      mustTime(t, "2026-09-01T09:00:00Z"),
		WindowDays: 365,
		Max:        10,
	})
	require.NoError(t, err)
	assert.Len(t, records, 10)
	assert.Equal(t, "demo-010", records[9].ID)
}

func TestGenerateValidation(t *testing.T) {
	_, err := Generate(Options{Start: mustTime(t, "2026-09-01T09:00:00Z")})
	require.Error(t, err)

	_, err = Generate(Options{Rule: "FREQ=DAILY"})
	require.Error(t, err)

	_, err = Generate(Options{Rule: "NOT-A-RULE", Start: mustTime(t, "2026-09-01T09:00:00Z")})
	require.Error(t, err)
}

func TestWriteDocumentShape(t *testing.T) {
	records, err := Generate(Options{
		Rule:       "FREQ=DAILY",
		Start:      mustTime(t, "2026-09-01T09:00:00Z"),
		WindowDays: 3,
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "data", "demo-events.json")
	require.NoError(t, WriteDocument(path, records))

	body, err := os.ReadFile(path)
	require.NoError(t, err)

	// Must parse as a catalogue document, same shape as the curated file.
	var doc struct {
		Events []json.RawMessage `json:"events"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Len(t, doc.Events, len(records))
}
