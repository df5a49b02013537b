package bundle

import (
	"fmt"
	"strings"
)

// The network shim replaces window.fetch with a dispatch over a closed set of
// virtual resource kinds, falling through to the original fetch captured
// before patching. The route table below is the single authority for that
// dispatch: the Go side uses it in tests via Matches/Dispatch, and Script
// renders the identical decision chain as inline JS.
//
// Matching is substring-based against the full request identifier. That is a
// known fragility kept for compatibility with the consuming application; it
// is isolated in Route.Matches so tightening to exact-path matching touches
// one method and the generated chain, not the callers.

// Route maps a virtual network identifier to the embedded payload serving it.
type Route struct {
	// Kind names the virtual resource ("config", "events",
	// "content-secondary", "content-default", in dispatch order).
	Kind string
	// Match is the identifier substring selecting this route.
	Match string
	// AlsoMatch, if non-empty, is a second substring that must also be
	// present (the secondary-locale marker).
	AlsoMatch string
	// Expr is the JS expression, relative to the data hand-off object,
	// resolving the payload.
	Expr string
}

// Matches reports whether the request identifier selects this route.
func (r Route) Matches(id string) bool {
	if !strings.Contains(id, r.Match) {
		return false
	}
	if r.AlsoMatch != "" && !strings.Contains(id, r.AlsoMatch) {
		return false
	}
	return true
}

// Routes returns the dispatch table. Order matters: the secondary-locale
// content route must precede the default one, since both match "content.json"
// and the secondary route is the more specific.
func Routes(secondaryLocale string) []Route {
	return []Route{
		{Kind: "config", Match: "config.json", Expr: "data.config"},
		{Kind: "events", Match: "events.json", Expr: "{ events: data.events }"},
		{Kind: "content-secondary", Match: "content.json", AlsoMatch: "lang=" + secondaryLocale, Expr: "data.contentSecondary"},
		{Kind: "content-default", Match: "content.json", Expr: "data.contentDefault"},
	}
}

// Dispatch returns the first route matching id, mirroring the generated JS
// decision chain exactly.
func Dispatch(routes []Route, id string) (Route, bool) {
	for _, r := range routes {
		if r.Matches(id) {
			return r, true
		}
	}
	return Route{}, false
}

// Script renders the inline interception logic. It must be embedded after
// the data hand-off object and before any consumer script, so every fetch
// issued during script evaluation is already intercepted.
func Script(handoffGlobal string, routes []Route) string {
	var b strings.Builder

	b.WriteString("(function () {\n")
	b.WriteString("  'use strict';\n")
	fmt.Fprintf(&b, "  var data = window.%s;\n", handoffGlobal)
	// Capture the original before patching so the fallthrough cannot recurse
	// into the shim.
	b.WriteString("  var realFetch = typeof window.fetch === 'function' ? window.fetch.bind(window) : null;\n")
	b.WriteString("  function resolved(payload) {\n")
	b.WriteString("    return Promise.resolve({ ok: true, status: 200, json: function () { return Promise.resolve(payload); } });\n")
	b.WriteString("  }\n")
	b.WriteString("  window.fetch = function (resource, init) {\n")
	b.WriteString("    var id = typeof resource === 'string' ? resource : String((resource && resource.url) || resource);\n")

	for _, r := range routes {
		cond := fmt.Sprintf("id.indexOf(%q) !== -1", r.Match)
		if r.AlsoMatch != "" {
			cond += fmt.Sprintf(" && id.indexOf(%q) !== -1", r.AlsoMatch)
		}
		fmt.Fprintf(&b, "    if (%s) { return resolved(%s); }\n", cond, r.Expr)
	}

	b.WriteString("    if (realFetch) { return realFetch(resource, init); }\n")
	b.WriteString("    return Promise.reject(new Error('no network transport available'));\n")
	b.WriteString("  };\n")
	b.WriteString("})();\n")

	return b.String()
}
