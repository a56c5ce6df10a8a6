package gap

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
)

const maxInstitutionRunes = 60

// Institution names the publisher of a manifest: its attribution, provider
// or label, else the host of manifestURL. Markup is stripped and the result
// is cut to 60 characters.
func Institution(m *iiif.Manifest, manifestURL string) string {
	for _, v := range []iiif.Value{m.Attribution, m.ProviderLabel, m.Label} {
		if s, ok := v.First(); ok {
			if name := truncate(stripTags(s), maxInstitutionRunes); name != "" {
				return name
			}
		}
	}

	if u, err := url.Parse(manifestURL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return "Unknown"
}

// stripTags returns the text content of an HTML fragment.
func stripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" || string(name) == "p" {
				b.WriteByte(' ')
			}
		}
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}
