package resolver

import (
	"regexp"
	"strings"
)

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// NormalizeLink turns a resolved link into an absolute URL. Links that carry
// a scheme and the NoLink sentinel pass through; a protocol-relative or bare
// host/path link gets https. Blank input becomes NoLink. Applying it twice
// gives the same result as applying it once.
func NormalizeLink(link string) string {
	link = strings.TrimSpace(link)
	switch {
	case link == "":
		return NoLink
	case link == NoLink, schemePattern.MatchString(link):
		return link
	}
	return "https://" + strings.TrimPrefix(link, "//")
}
