package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the tool configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions. The bundled page's own configuration documents (config.*.json)
// are data inputs handled by internal/data, not by this package.

// AssetKind distinguishes stylesheet modules from script modules.
type AssetKind string

const (
	KindStyle  AssetKind = "style"
	KindScript AssetKind = "script"
)

// AssetModule describes one named front-end resource. The position of a
// module in Config.Assets is its load order within its kind; library modules
// must be declared before the modules that depend on them.
type AssetModule struct {
	// Name is an internal identifier used in logs and error messages.
	Name string `yaml:"name" json:"name"`
	// Kind is "style" or "script".
	Kind AssetKind `yaml:"kind" json:"kind"`
	// Path is the file location of the raw asset text.
	Path string `yaml:"path" json:"path"`
}

// LocaleSource describes one locale content document.
type LocaleSource struct {
	// Locale is the short language code (e.g. "de", "en").
	Locale string `yaml:"locale" json:"locale"`
	// Path is the JSON content bundle location.
	Path string `yaml:"path" json:"path"`
}

// DataConfig lists the JSON documents fused into the artifact.
type DataConfig struct {
	// PreviewConfig / ProductionConfig are the two alternative page
	// configuration documents; exactly one is embedded per run.
	PreviewConfig    string `yaml:"preview_config" json:"preview_config"`
	ProductionConfig string `yaml:"production_config" json:"production_config"`

	// Events is the curated event catalogue ({"events": [...]}).
	Events string `yaml:"events" json:"events"`
	// DemoEvents is the optional demo catalogue, same shape, appended after
	// the curated records in preview runs.
	DemoEvents string `yaml:"demo_events" json:"demo_events"`

	// ContentDefault / ContentSecondary are the two locale bundles.
	ContentDefault   LocaleSource `yaml:"content_default" json:"content_default"`
	ContentSecondary LocaleSource `yaml:"content_secondary" json:"content_secondary"`
}

// OutputConfig holds the two mode-selected artifact destinations.
type OutputConfig struct {
	Preview    string `yaml:"preview" json:"preview"`
	Production string `yaml:"production" json:"production"`
}

// ServeConfig controls the preview server.
type ServeConfig struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`
	// Refresh is a cron-style schedule string for periodic rebuilds
	// (e.g. "*/15 * * * *"). Empty disables the cron trigger.
	Refresh string `yaml:"refresh" json:"refresh"`
	// Watch enables rebuild-on-change for asset and data files.
	Watch bool `yaml:"watch" json:"watch"`
}

// SnapshotConfig controls headless PNG capture of the built artifact.
type SnapshotConfig struct {
	Width      int    `yaml:"width" json:"width"`
	Height     int    `yaml:"height" json:"height"`
	TimeoutSec int    `yaml:"timeout_sec" json:"timeout_sec"`
	Output     string `yaml:"output" json:"output"`
}

// Config is the top-level tool configuration.
type Config struct {
	// Title is the document title of the generated page.
	Title string `yaml:"title" json:"title"`

	// Favicon is the vector icon source embedded as a data URI.
	Favicon string `yaml:"favicon" json:"favicon"`

	// Assets is the ordered module list. Order is load-bearing: within each
	// kind, earlier modules are emitted first.
	Assets []AssetModule `yaml:"assets" json:"assets"`

	Data   DataConfig   `yaml:"data" json:"data"`
	Output OutputConfig `yaml:"output" json:"output"`

	Serve    ServeConfig    `yaml:"serve" json:"serve"`
	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`

	// ExportICS, if non-empty, is where the iCalendar export of the resolved
	// event set is written after a build.
	ExportICS string `yaml:"export_ics,omitempty" json:"export_ics,omitempty"`
}

// DefaultConfig returns an in-memory default configuration matching the
// conventional repository layout.
func DefaultConfig() *Config {
	return &Config{
		Title:   "Event Map",
		Favicon: "assets/favicon.svg",
		Assets: []AssetModule{
			{Name: "lib-style", Kind: KindStyle, Path: "assets/vendor/lib.css"},
			{Name: "app-style", Kind: KindStyle, Path: "assets/style.css"},
			{Name: "lib-script", Kind: KindScript, Path: "assets/vendor/lib.js"},
			{Name: "i18n-script", Kind: KindScript, Path: "assets/i18n.js"},
			{Name: "app-script", Kind: KindScript, Path: "assets/app.js"},
		},
		Data: DataConfig{
			PreviewConfig:    "data/config.preview.json",
			ProductionConfig: "data/config.production.json",
			Events:           "data/events.json",
			DemoEvents:       "data/demo-events.json",
			ContentDefault:   LocaleSource{Locale: "de", Path: "data/content.de.json"},
			ContentSecondary: LocaleSource{Locale: "en", Path: "data/content.en.json"},
		},
		Output: OutputConfig{
			Preview:    "dist/preview/index.html",
			Production: "dist/index.html",
		},
		Serve: ServeConfig{
			Listen:  "127.0.0.1:8080",
			Refresh: "*/15 * * * *",
			Watch:   true,
		},
		Snapshot: SnapshotConfig{
			Width:      1280,
			Height:     900,
			TimeoutSec: 30,
			Output:     "dist/preview.png",
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Title == "" {
		c.Title = def.Title
	}
	if c.Favicon == "" {
		c.Favicon = def.Favicon
	}
	if len(c.Assets) == 0 {
		c.Assets = def.Assets
	}
	for i := range c.Assets {
		// Unknown kinds default to script; a style declared as script would
		// fail loudly at assembly time rather than silently here.
		switch c.Assets[i].Kind {
		case KindStyle, KindScript:
		default:
			c.Assets[i].Kind = KindScript
		}
		if c.Assets[i].Name == "" {
			c.Assets[i].Name = c.Assets[i].Path
		}
	}

	if c.Data.PreviewConfig == "" {
		c.Data.PreviewConfig = def.Data.PreviewConfig
	}
	if c.Data.ProductionConfig == "" {
		c.Data.ProductionConfig = def.Data.ProductionConfig
	}
	if c.Data.Events == "" {
		c.Data.Events = def.Data.Events
	}
	if c.Data.DemoEvents == "" {
		c.Data.DemoEvents = def.Data.DemoEvents
	}
	if c.Data.ContentDefault.Path == "" {
		c.Data.ContentDefault = def.Data.ContentDefault
	}
	if c.Data.ContentDefault.Locale == "" {
		c.Data.ContentDefault.Locale = def.Data.ContentDefault.Locale
	}
	if c.Data.ContentSecondary.Path == "" {
		c.Data.ContentSecondary = def.Data.ContentSecondary
	}
	if c.Data.ContentSecondary.Locale == "" {
		c.Data.ContentSecondary.Locale = def.Data.ContentSecondary.Locale
	}

	if c.Output.Preview == "" {
		c.Output.Preview = def.Output.Preview
	}
	if c.Output.Production == "" {
		c.Output.Production = def.Output.Production
	}

	if c.Serve.Listen == "" {
		c.Serve.Listen = def.Serve.Listen
	}
	if c.Snapshot.Width <= 0 {
		c.Snapshot.Width = def.Snapshot.Width
	}
	if c.Snapshot.Height <= 0 {
		c.Snapshot.Height = def.Snapshot.Height
	}
	if c.Snapshot.TimeoutSec <= 0 {
		c.Snapshot.TimeoutSec = def.Snapshot.TimeoutSec
	}
	if c.Snapshot.Output == "" {
		c.Snapshot.Output = def.Snapshot.Output
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".sitepack-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Set permissions to 0600 on temp file before rename.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	// Rename over the target path.
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
