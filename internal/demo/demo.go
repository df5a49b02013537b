// Package demo generates the demo event catalogue by expanding a recurrence
// rule into concrete records. The output document has the same shape as the
// curated catalogue ({"events": [...]}) so the data loader treats both alike.
package demo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/teambition/rrule-go"

	"sitepack/internal/log"
)

const (
	// defaultMaxRecords caps the expansion to keep demo documents small.
	defaultMaxRecords = 50
	defaultWindowDays = 90
)

// Options controls demo-catalogue generation.
type Options struct {
	// Rule is an RFC 5545 recurrence rule, e.g. "FREQ=WEEKLY;BYDAY=SA".
	Rule string

	// Start is the first occurrence anchor; the expansion window starts here.
	Start time.Time

	// WindowDays bounds the expansion window. If zero, defaultWindowDays.
	WindowDays int

	// Max caps the number of generated records. If zero, defaultMaxRecords.
	Max int

	// Title and Location label every generated record.
	Title    string
	Location string
	Lat, Lon float64
}

// Record is one generated demo event. The field set mirrors what the
// consuming application reads from curated records (identifier, start time,
// geographic location, descriptive text); the bundler itself never inspects
// these fields.
type Record struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Start       string `json:"start"`
	Venue       Venue  `json:"venue"`
	Demo        bool   `json:"demo"`
}

// Venue is the geographic location of a record.
type Venue struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// document is the catalogue shape shared with the curated events file.
type document struct {
	Events []Record `json:"events"`
}

// Generate expands the rule into ordered records. Output is deterministic:
// the same options always produce the same records.
func Generate(opts Options) ([]Record, error) {
	if opts.Rule == "" {
		return nil, errors.New("demo: recurrence rule is empty")
	}
	if opts.Start.IsZero() {
		return nil, errors.New("demo: start time is required")
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = defaultWindowDays
	}
	if opts.Max <= 0 {
		opts.Max = defaultMaxRecords
	}
	if opts.Title == "" {
		opts.Title = "Demo event"
	}
	if opts.Location == "" {
		opts.Location = "Demo venue"
	}

	r, err := rrule.StrToRRule(opts.Rule)
	if err != nil {
		return nil, fmt.Errorf("demo: parse rule: %w", err)
	}
	r.DTStart(opts.Start)

	var set rrule.Set
	set.RRule(r)

	windowEnd := opts.Start.AddDate(0, 0, opts.WindowDays)
	times := set.Between(opts.Start, windowEnd, true)

	if len(times) > opts.Max {
		times = times[:opts.Max]
		log.Warn("demo: expansion truncated", "cap", opts.Max, "rule", opts.Rule)
	}

	records := make([]Record, 0, len(times))
	for i, t := range times {
		records = append(records, Record{
			ID:          fmt.Sprintf("demo-%03d", i+1),
			Title:       opts.Title,
			Description: fmt.Sprintf("%s (occurrence %d)", opts.Title, i+1),
			Start:       t.Format(time.RFC3339),
			Venue: Venue{
				Name: opts.Location,
				Lat:  opts.Lat,
				Lon:  opts.Lon,
			},
			Demo: true,
		})
	}

	return records, nil
}

// WriteDocument writes the records as a catalogue document at path, creating
// the parent directory if needed.
func WriteDocument(path string, records []Record) error {
	if path == "" {
		return errors.New("demo: output path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("demo: create directory: %w", err)
	}

	out, err := json.MarshalIndent(document{Events: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("demo: encode: %w", err)
	}
	out = append(out, '\n')

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("demo: write: %w", err)
	}

	log.Info("demo catalogue written", "path", path, "records", len(records))
	return nil
}
