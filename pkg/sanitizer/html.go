package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var blockEnd = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|h[1-6]|blockquote|pre|tr)>`)

var (
	strictPolicy = sync.OnceValue(bluemonday.StrictPolicy)
	bodyPolicy   = sync.OnceValue(newBodyPolicy)
)

// newBodyPolicy allows the formatting a composed email body can carry.
// Links keep their href and open in a new tab.
func newBodyPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowElements(
		"p", "br", "div", "span",
		"h1", "h2", "h3",
		"strong", "b", "em", "i", "u", "s",
		"ul", "ol", "li",
		"blockquote", "code", "pre", "hr",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoFollowOnLinks(true)
	return p
}

// SanitizeHTML keeps basic formatting and links and removes everything else,
// including scripts, event handlers, styles and javascript: URLs.
func SanitizeHTML(s string) string {
	return bodyPolicy().Sanitize(s)
}

// StripHTML removes all markup and returns HTML-escaped text that is safe to
// interpolate into a document.
func StripHTML(s string) string {
	return strings.TrimSpace(strictPolicy().Sanitize(s))
}

// PlainText removes all markup and returns unescaped text for a text/plain part.
// Line breaks and the ends of block elements become newlines.
func PlainText(s string) string {
	s = blockEnd.ReplaceAllString(s, "$0\n")
	return strings.TrimSpace(html.UnescapeString(strictPolicy().Sanitize(s)))
}

// SanitizeHTMLCustom applies policy. A nil policy returns s unchanged.
func SanitizeHTMLCustom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}
