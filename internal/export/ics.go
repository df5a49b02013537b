// Package export serializes the resolved event set to an iCalendar file.
//
// Event records are opaque to the bundling core, so the exporter probes each
// record for the conventional fields (identifier, start time, title,
// location, description) and skips records it cannot map. Skipping is never
// an error: the export is a convenience byproduct, not part of the artifact
// contract.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ical "github.com/arran4/golang-ical"

	"sitepack/internal/log"
)

// startLayouts are accepted record start-time formats, most specific first.
var startLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// WriteICS writes one VEVENT per exportable record and returns how many
// records were exported.
func WriteICS(path string, records []json.RawMessage) (int, error) {
	if path == "" {
		return 0, errors.New("export: output path is empty")
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//sitepack//event export//EN")

	exported := 0
	for i, raw := range records {
		ev, ok := probeRecord(i, raw)
		if !ok {
			continue
		}

		ve := cal.AddEvent(ev.id)
		ve.SetStartAt(ev.start)
		ve.SetSummary(ev.title)
		if ev.location != "" {
			ve.SetLocation(ev.location)
		}
		if ev.description != "" {
			ve.SetDescription(ev.description)
		}
		exported++
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("export: create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(cal.Serialize()), 0o644); err != nil {
		return 0, fmt.Errorf("export: write: %w", err)
	}

	log.Info("ics export written", "path", path, "exported", exported, "skipped", len(records)-exported)
	return exported, nil
}

type probedEvent struct {
	id          string
	title       string
	description string
	location    string
	start       time.Time
}

// probeRecord extracts the exportable fields from one opaque record.
// Records without an identifier or a parsable start time are skipped.
func probeRecord(index int, raw json.RawMessage) (probedEvent, bool) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		log.Warn("export: record is not an object; skipped", "index", index)
		return probedEvent{}, false
	}

	var ev probedEvent
	ev.id = stringField(m, "id")
	ev.title = stringField(m, "title", "name")
	ev.description = stringField(m, "description")

	// Location may be a plain string or a venue object with a name.
	ev.location = stringField(m, "location")
	if ev.location == "" {
		if venue, ok := m["venue"].(map[string]any); ok {
			if name, ok := venue["name"].(string); ok {
				ev.location = name
			}
		}
	}

	startRaw := stringField(m, "start", "start_time", "startTime")
	if ev.id == "" || startRaw == "" {
		log.Warn("export: record lacks id or start; skipped", "index", index, "id", ev.id)
		return probedEvent{}, false
	}

	start, ok := parseStart(startRaw)
	if !ok {
		log.Warn("export: unparsable start; skipped", "index", index, "id", ev.id, "start", startRaw)
		return probedEvent{}, false
	}
	ev.start = start

	if ev.title == "" {
		ev.title = ev.id
	}

	return ev, true
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func parseStart(v string) (time.Time, bool) {
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
