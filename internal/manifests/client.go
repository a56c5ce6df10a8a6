// Package manifests retrieves IIIF manifest documents over HTTP or from disk.
package manifests

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
)

// ErrStatus is returned when a server answers with anything but 200.
var ErrStatus = errors.New("unexpected HTTP status")

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 64 << 20

// Client fetches manifests. Failed requests are not retried.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
}

// NewClient creates a new manifest client
func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		UserAgent: "iiif-gallery",
	}
}

// FetchRaw downloads the document at rawURL.
func (c *Client) FetchRaw(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "application/ld+json, application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrStatus, rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rawURL, err)
	}
	return data, nil
}

// Fetch downloads and parses the manifest at rawURL.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*iiif.Manifest, error) {
	data, err := c.FetchRaw(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	m, err := iiif.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", rawURL, err)
	}
	return m, nil
}

// Load reads a manifest from an http(s) URL or a local file path.
func (c *Client) Load(ctx context.Context, source string) (*iiif.Manifest, error) {
	if IsURL(source) {
		return c.Fetch(ctx, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}
	m, err := iiif.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}
	return m, nil
}

// IsURL reports whether s is an absolute http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}
