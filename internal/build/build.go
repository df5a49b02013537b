// Package build runs the bundling pipeline end to end: resolve the mode
// profile, load resources and data, assemble the document, write it to the
// mode-selected destination.
package build

import (
	"fmt"
	"path/filepath"

	"sitepack/internal/assets"
	"sitepack/internal/bundle"
	"sitepack/internal/config"
	"sitepack/internal/data"
	"sitepack/internal/log"
	"sitepack/internal/mode"
	"sitepack/internal/output"
)

// Options selects the inputs of one run.
type Options struct {
	// BaseDir anchors all relative paths from the tool configuration.
	BaseDir string
	// Config is the loaded tool configuration.
	Config *config.Config
	// Token is the raw mode token ("" defaults to preview).
	Token string
}

// Result is everything one completed run produced.
type Result struct {
	Profile  mode.Profile
	Inputs   *data.Inputs
	Artifact *bundle.Artifact
	Summary  output.Summary
}

// Run executes one build. Any failure aborts before the destination is
// touched; the write itself is atomic.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("build: nil config")
	}

	profile := mode.Resolve(opts.Token)

	art, inputs, err := Assemble(opts, profile)
	if err != nil {
		return nil, err
	}

	dest := opts.Config.Output.Production
	if profile.PreviewOutput {
		dest = opts.Config.Output.Preview
	}

	sum, err := output.Write(resolvePath(opts.BaseDir, dest), art)
	if err != nil {
		return nil, err
	}

	return &Result{
		Profile:  profile,
		Inputs:   inputs,
		Artifact: art,
		Summary:  sum,
	}, nil
}

// Assemble produces the artifact for a profile without writing it. The
// preview server uses this to rebuild in memory and swap atomically.
func Assemble(opts Options, profile mode.Profile) (*bundle.Artifact, *data.Inputs, error) {
	cfg := opts.Config

	res, err := assets.Load(opts.BaseDir, cfg.Assets)
	if err != nil {
		return nil, nil, err
	}

	favicon, err := assets.FaviconDataURI(opts.BaseDir, cfg.Favicon)
	if err != nil {
		return nil, nil, err
	}

	inputs, err := data.Load(opts.BaseDir, cfg.Data, profile)
	if err != nil {
		return nil, nil, err
	}

	art, err := bundle.Assemble(bundle.Page{
		Title:           cfg.Title,
		FaviconDataURI:  favicon,
		Styles:          res.Styles,
		Scripts:         res.Scripts,
		Data:            inputs,
		DefaultLocale:   cfg.Data.ContentDefault.Locale,
		SecondaryLocale: cfg.Data.ContentSecondary.Locale,
		Banner:          profile.PreviewOutput,
	})
	if err != nil {
		return nil, nil, err
	}

	log.Debug("artifact assembled",
		"mode", profile.Mode.String(),
		"token", profile.Token,
		"events", art.EventCount,
		"banner", profile.PreviewOutput,
	)

	return art, inputs, nil
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
