// Package bundle assembles the self-contained artifact document.
//
// Assembly is a pure function of its inputs: the same resources, data and
// profile always produce byte-identical output. Nothing in this package
// touches the filesystem or the clock.
package bundle

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"sitepack/internal/data"
)

// HandoffGlobal is the name of the frozen build-time data hand-off object.
// It carries the four embedded globals (config, events, contentDefault,
// contentSecondary) consumed by the shim and by the application entry point.
const HandoffGlobal = "__SITE_DATA__"

// Page carries everything the assembler needs for one document.
type Page struct {
	// Title is the document title.
	Title string
	// FaviconDataURI is the base64 SVG data URI for the icon link.
	FaviconDataURI string

	// Styles / Scripts are the concatenated asset texts in declared order.
	Styles  string
	Scripts string

	// Data is the resolved, post-merge data set.
	Data *data.Inputs

	// DefaultLocale / SecondaryLocale are the short language codes of the two
	// content bundles. SecondaryLocale also derives the shim's locale marker.
	DefaultLocale   string
	SecondaryLocale string

	// Banner enables the fixed PREVIEW badge overlay.
	Banner bool
}

// Artifact is one assembled document.
type Artifact struct {
	// HTML is the complete document text.
	HTML []byte
	// EventCount is the post-merge record count embedded in the document.
	EventCount int
}

const bannerStyle = `.preview-banner{position:fixed;top:0;right:0;z-index:9999;background:#c0392b;color:#fff;font:bold 12px/1 sans-serif;letter-spacing:.2em;padding:6px 14px;pointer-events:none}`

// Assemble composes the final document. Section order is load-bearing:
//
//  1. style block (library styles before app styles, already ordered)
//  2. DOM skeleton with the main container hidden and a noscript fallback
//  3. the frozen data hand-off object
//  4. the network shim (must precede every consumer script)
//  5. the concatenated consumer scripts
//  6. a final step revealing the main container, so without JS the noscript
//     fallback stays visible instead
func Assemble(p Page) (*Artifact, error) {
	if p.Data == nil {
		return nil, fmt.Errorf("bundle: no data inputs")
	}

	handoff, err := handoffScript(p)
	if err != nil {
		return nil, err
	}

	eventCount := p.Data.EventCount()

	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&b, "<html lang=%q>\n", p.DefaultLocale)
	b.WriteString("<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(p.Title))
	fmt.Fprintf(&b, "<link rel=\"icon\" href=%q>\n", p.FaviconDataURI)
	b.WriteString("<style>\n")
	b.WriteString(p.Styles)
	if p.Banner {
		b.WriteString(bannerStyle)
		b.WriteString("\n")
	}
	b.WriteString("</style>\n")
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")

	// DOM skeleton. The app container starts hidden and is revealed by the
	// last inline script once all consumer scripts have evaluated.
	b.WriteString("<div id=\"app\" hidden>\n")
	b.WriteString("  <div id=\"map\"></div>\n")
	b.WriteString("  <p id=\"filter-sentence\">\n")
	b.WriteString("    <span id=\"filter-category\"></span>\n")
	b.WriteString("    <span id=\"filter-time\"></span>\n")
	b.WriteString("    <span id=\"filter-place\"></span>\n")
	b.WriteString("  </p>\n")
	b.WriteString("  <aside id=\"detail-panel\" class=\"closed\"></aside>\n")
	b.WriteString("</div>\n")
	fmt.Fprintf(&b, "<noscript><p class=\"noscript-note\">This page needs JavaScript to show the map of %d events.</p></noscript>\n", eventCount)
	if p.Banner {
		b.WriteString("<div class=\"preview-banner\">PREVIEW</div>\n")
	}

	// Embedded data, then the shim, then the consumer scripts. Any fetch a
	// consumer script issues during evaluation is already intercepted.
	b.WriteString("<script>\n")
	b.WriteString(handoff)
	b.WriteString("</script>\n")
	b.WriteString("<script>\n")
	b.WriteString(Script(HandoffGlobal, Routes(p.SecondaryLocale)))
	b.WriteString("</script>\n")
	b.WriteString("<script>\n")
	b.WriteString(p.Scripts)
	b.WriteString("</script>\n")
	b.WriteString("<script>document.getElementById('app').hidden = false;</script>\n")

	b.WriteString("</body>\n")
	b.WriteString("</html>\n")

	return &Artifact{
		HTML:       []byte(b.String()),
		EventCount: eventCount,
	}, nil
}

// handoffScript renders the frozen hand-off object. Each member is emitted
// through the JSON encoder, which escapes "<", ">" and "&" so no document
// payload can terminate the surrounding script element, while the decoded
// value stays deep-equal to the source document.
func handoffScript(p Page) (string, error) {
	cfg, err := encodeEmbedded(p.Data.Config)
	if err != nil {
		return "", fmt.Errorf("bundle: encode config: %w", err)
	}
	events, err := encodeEmbedded(p.Data.Events)
	if err != nil {
		return "", fmt.Errorf("bundle: encode events: %w", err)
	}
	contentDef, err := encodeEmbedded(p.Data.ContentDefault)
	if err != nil {
		return "", fmt.Errorf("bundle: encode default content: %w", err)
	}
	contentSec, err := encodeEmbedded(p.Data.ContentSecondary)
	if err != nil {
		return "", fmt.Errorf("bundle: encode secondary content: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "window.%s = Object.freeze({\n", HandoffGlobal)
	fmt.Fprintf(&b, "  config: %s,\n", cfg)
	fmt.Fprintf(&b, "  events: %s,\n", events)
	fmt.Fprintf(&b, "  contentDefault: %s,\n", contentDef)
	fmt.Fprintf(&b, "  contentSecondary: %s\n", contentSec)
	b.WriteString("});\n")

	return b.String(), nil
}

// encodeEmbedded serializes v for embedding inside a script element. Raw
// documents pass through compacted with their key order intact; the encoder's
// HTML escaping guarantees the literal is safe inside <script>.
func encodeEmbedded(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
