// Package assets loads the declared front-end resource modules.
//
// Ordering is part of the contract, not cosmetics: library styles must
// precede application styles so app selectors win by source order, and the
// library script must precede the i18n script must precede the application
// script because later modules reference globals defined by earlier ones.
// The declared module list in the tool configuration is the single source of
// that order; this package concatenates strictly in list position.
package assets

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sitepack/internal/config"
	"sitepack/internal/log"
)

// Bundle holds the concatenated asset text by kind, in declared order.
type Bundle struct {
	// Styles is the concatenation of all style modules.
	Styles string
	// Scripts is the concatenation of all script modules.
	Scripts string
}

// Load reads every declared module and returns the concatenated bundle.
// Paths are resolved relative to baseDir unless absolute. Any unreadable
// module aborts the load; no partial concatenation is produced.
func Load(baseDir string, modules []config.AssetModule) (Bundle, error) {
	var styles, scripts strings.Builder

	for _, m := range modules {
		body, err := readAsset(baseDir, m.Path)
		if err != nil {
			return Bundle{}, fmt.Errorf("assets: module %q: %w", m.Name, err)
		}

		switch m.Kind {
		case config.KindStyle:
			appendChunk(&styles, body)
		case config.KindScript:
			appendChunk(&scripts, body)
		default:
			return Bundle{}, fmt.Errorf("assets: module %q: unknown kind %q", m.Name, m.Kind)
		}

		log.Debug("asset module loaded", "name", m.Name, "kind", string(m.Kind), "bytes", len(body))
	}

	return Bundle{Styles: styles.String(), Scripts: scripts.String()}, nil
}

// FaviconDataURI reads the vector icon source and returns it base64-encoded
// as an SVG data URI.
func FaviconDataURI(baseDir, path string) (string, error) {
	body, err := readAsset(baseDir, path)
	if err != nil {
		return "", fmt.Errorf("assets: favicon: %w", err)
	}
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(body)), nil
}

func readAsset(baseDir, path string) (string, error) {
	p := path
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// appendChunk appends body ensuring a newline boundary between modules so
// that a file without a trailing newline cannot fuse with its successor.
func appendChunk(b *strings.Builder, body string) {
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteByte('\n')
	}
}
