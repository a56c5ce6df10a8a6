package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama is a provider for a local or remote Ollama server.
type Ollama struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewOllama returns an Ollama provider. An empty baseURL means localhost.
func NewOllama(baseURL string) *Ollama {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	return &Ollama{BaseURL: strings.TrimRight(baseURL, "/"), HTTPClient: &http.Client{}}
}

// Complete sends the prompt to the generate endpoint.
func (o *Ollama) Complete(ctx context.Context, req Request) (string, error) {
	body := map[string]any{
		"model":  req.Model,
		"prompt": req.Prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": req.Temperature,
		},
	}
	if req.JSON {
		body["format"] = "json"
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := postJSON(ctx, o.HTTPClient, o.BaseURL+"/api/generate", nil, body, &response); err != nil {
		return "", err
	}
	return response.Response, nil
}

// postJSON sends body as JSON and decodes a 200 response into out.
func postJSON(ctx context.Context, client *http.Client, url string, header http.Header, body, out any) error {
	requestBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create new request: %w", err)
	}
	for key, values := range header {
		req.Header[key] = values
	}
	req.Header.Set("Content-Type", "application/json")

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
