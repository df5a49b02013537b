// Package data loads the JSON documents fused into the artifact.
//
// Documents are deliberately opaque: they are parsed only far enough to prove
// they are valid JSON (and, for event catalogues, to reach the record list),
// then carried as raw messages so the embedded form round-trips the source
// without field filtering, coercion or default-filling.
package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"sitepack/internal/config"
	"sitepack/internal/log"
	"sitepack/internal/mode"
)

// Inputs is the resolved data set for one run: the selected configuration
// variant, the post-merge event records and the two locale bundles.
type Inputs struct {
	// Config is the selected page configuration document, kept verbatim.
	Config json.RawMessage

	// Events is the effective ordered record list: curated records first,
	// then demo records when the profile merges them. No deduplication, no
	// reordering.
	Events []json.RawMessage

	// ContentDefault / ContentSecondary are the locale bundles, verbatim.
	ContentDefault   json.RawMessage
	ContentSecondary json.RawMessage

	// CuratedCount / DemoCount record how many records each source
	// contributed to Events.
	CuratedCount int
	DemoCount    int
}

// EventCount returns the post-merge record count.
func (in *Inputs) EventCount() int {
	return len(in.Events)
}

// eventsDoc is the minimal shape of an event catalogue. Records stay raw.
type eventsDoc struct {
	Events []json.RawMessage `json:"events"`
}

// Load reads all documents the profile requires. Any missing file or
// malformed document aborts the load; there is no default substitution.
func Load(baseDir string, dc config.DataConfig, profile mode.Profile) (*Inputs, error) {
	in := &Inputs{}

	cfgPath := dc.PreviewConfig
	if profile.UseProductionConfig {
		cfgPath = dc.ProductionConfig
	}

	var err error
	if in.Config, err = loadDocument(baseDir, cfgPath); err != nil {
		return nil, fmt.Errorf("data: configuration: %w", err)
	}

	curated, err := loadEvents(baseDir, dc.Events)
	if err != nil {
		return nil, fmt.Errorf("data: events: %w", err)
	}
	in.CuratedCount = len(curated)
	in.Events = curated

	if profile.MergeDemoEvents {
		demo, err := loadEvents(baseDir, dc.DemoEvents)
		if err != nil {
			return nil, fmt.Errorf("data: demo events: %w", err)
		}
		in.DemoCount = len(demo)
		in.Events = append(in.Events, demo...)
	}

	if in.ContentDefault, err = loadDocument(baseDir, dc.ContentDefault.Path); err != nil {
		return nil, fmt.Errorf("data: content %q: %w", dc.ContentDefault.Locale, err)
	}
	if in.ContentSecondary, err = loadDocument(baseDir, dc.ContentSecondary.Path); err != nil {
		return nil, fmt.Errorf("data: content %q: %w", dc.ContentSecondary.Locale, err)
	}

	log.Info("data loaded",
		"config", cfgPath,
		"curated", in.CuratedCount,
		"demo", in.DemoCount,
		"total", in.EventCount(),
	)

	return in, nil
}

// loadDocument reads one JSON document and verifies it parses. The raw bytes
// are returned unchanged so the document embeds verbatim.
func loadDocument(baseDir, path string) (json.RawMessage, error) {
	body, err := os.ReadFile(resolve(baseDir, path))
	if err != nil {
		return nil, err
	}

	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return json.RawMessage(body), nil
}

// loadEvents reads an event catalogue and returns its record list in source
// order. A catalogue without an "events" array is malformed.
func loadEvents(baseDir, path string) ([]json.RawMessage, error) {
	body, err := os.ReadFile(resolve(baseDir, path))
	if err != nil {
		return nil, err
	}

	var doc eventsDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Events == nil {
		return nil, fmt.Errorf("parse %s: missing \"events\" array", path)
	}

	return doc.Events, nil
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
