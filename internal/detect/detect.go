// Package detect decides whether a rendered page is an anti-bot interstitial
// (CAPTCHA, login wall, access-denied page) rather than real content.
package detect

import "strings"

// DefaultIndicators are the phrases that mark a page as blocked. The list is
// deliberately broad; a product page with "login" in a footer link will
// false-positive, which is an accepted trade-off of this heuristic.
var DefaultIndicators = []string{
	"captcha",
	"verify",
	"are you human",
	"access denied",
	"please verify",
	"sign in",
	"login",
	"blocked",
}

// Detector reports whether page text looks like a block interstitial.
type Detector struct {
	indicators []string
}

// New returns a detector over the given indicator phrases. Matching is
// case-insensitive substring containment.
func New(indicators []string) *Detector {
	lowered := make([]string, len(indicators))
	for i, ind := range indicators {
		lowered[i] = strings.ToLower(ind)
	}
	return &Detector{indicators: lowered}
}

// NewDefault returns a detector over DefaultIndicators.
func NewDefault() *Detector {
	return New(DefaultIndicators)
}

// Blocked returns true if any indicator occurs in the page text. Empty text
// is never considered blocked.
func (d *Detector) Blocked(pageText string) bool {
	if pageText == "" {
		return false
	}
	low := strings.ToLower(pageText)
	for _, ind := range d.indicators {
		if strings.Contains(low, ind) {
			return true
		}
	}
	return false
}
