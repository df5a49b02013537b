// Package mode resolves the deployment-variant token into the per-run
// decision profile.
//
// The token semantically selects between two variants, preview and
// production, but the inherited pipeline contract evaluates it as three
// independent equality tests against different literals. A token that is
// neither "preview" nor "production" therefore lands in a hybrid profile
// (preview page configuration, no demo merge, production destination, no
// banner). Callers almost certainly never want that hybrid, so Resolve
// reproduces it bit-for-bit for compatibility and flags it with a warning.
package mode

import (
	"sitepack/internal/log"
)

// Mode is the internal two-variant model of the deployment token.
type Mode int

const (
	// Preview bundles demo events, shows the banner and writes to the
	// preview destination.
	Preview Mode = iota
	// Production embeds the production configuration and writes to the
	// production destination.
	Production
	// Other is any unrecognized token; only reachable through the legacy
	// boundary behavior.
	Other
)

const (
	// DefaultToken is assumed when no mode argument is given.
	DefaultToken = "preview"

	tokenPreview    = "preview"
	tokenProduction = "production"
)

func (m Mode) String() string {
	switch m {
	case Preview:
		return "preview"
	case Production:
		return "production"
	default:
		return "other"
	}
}

// Profile is the set of decisions a run derives from the mode token.
type Profile struct {
	// Mode is the internal classification of the token.
	Mode Mode
	// Token is the raw input token, kept for logs and the summary.
	Token string

	// UseProductionConfig selects which page configuration document to embed.
	UseProductionConfig bool
	// MergeDemoEvents appends the demo catalogue after the curated records.
	MergeDemoEvents bool
	// PreviewOutput selects the preview destination and enables the banner.
	PreviewOutput bool
}

// Resolve maps a token to its decision profile using the legacy contract:
// three independent comparisons, not one discriminated choice.
//
//   - production configuration iff token == "production"
//   - demo merge iff token == "preview"
//   - preview destination and banner iff token == "preview"
//
// An empty token defaults to "preview".
func Resolve(token string) Profile {
	if token == "" {
		token = DefaultToken
	}

	p := Profile{
		Token:               token,
		UseProductionConfig: token == tokenProduction,
		MergeDemoEvents:     token == tokenPreview,
		PreviewOutput:       token == tokenPreview,
	}

	switch token {
	case tokenPreview:
		p.Mode = Preview
	case tokenProduction:
		p.Mode = Production
	default:
		p.Mode = Other
		log.Warn("unrecognized mode token; applying legacy hybrid profile",
			"token", token,
			"config", "preview",
			"demo_merge", false,
			"output", "production",
		)
	}

	return p
}
