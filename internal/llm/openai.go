package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const defaultOpenAIURL = "https://api.openai.com/v1"

// OpenAI is a provider for the OpenAI chat completions API.
type OpenAI struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewOpenAI returns an OpenAI provider using apiKey.
func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{APIKey: apiKey, BaseURL: defaultOpenAIURL, HTTPClient: &http.Client{}}
}

// Complete sends the prompt as a single user message.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	if o.APIKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	body := map[string]any{
		"model": req.Model,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": req.Prompt,
			},
		},
		"temperature": req.Temperature,
	}
	if req.JSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+o.APIKey)

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	url := strings.TrimRight(o.BaseURL, "/") + "/chat/completions"
	if err := postJSON(ctx, o.HTTPClient, url, header, body, &response); err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}
