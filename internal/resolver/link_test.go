package resolver

import "testing"

func TestNormalizeLink(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{name: "absolute https", link: "https://example.org/x", want: "https://example.org/x"},
		{name: "absolute http", link: "http://example.org/x", want: "http://example.org/x"},
		{name: "other scheme", link: "ftp://example.org/x", want: "ftp://example.org/x"},
		{name: "upper case scheme", link: "HTTPS://example.org/x", want: "HTTPS://example.org/x"},
		{name: "bare host", link: "example.org/x", want: "https://example.org/x"},
		{name: "protocol relative", link: "//example.org/x", want: "https://example.org/x"},
		{name: "surrounding space", link: "  example.org/x ", want: "https://example.org/x"},
		{name: "sentinel", link: NoLink, want: NoLink},
		{name: "blank", link: "   ", want: NoLink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLink(tt.link)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
			if again := NormalizeLink(got); again != got {
				t.Errorf("Expected normalizing twice to be a no-op, got %q then %q", got, again)
			}
		})
	}
}
