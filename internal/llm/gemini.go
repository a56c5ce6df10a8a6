package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini is a provider for Google Gemini.
type Gemini struct {
	APIKey string
}

// NewGemini returns a Gemini provider using apiKey.
func NewGemini(apiKey string) *Gemini {
	return &Gemini{APIKey: apiKey}
}

// Complete sends the prompt to Gemini. JSON requests use the JSON response
// type and return only the outermost object of the answer.
func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	if g.APIKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))
	if req.JSON {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", fmt.Errorf("gemini refused the prompt: %w", err)
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return geminiAnswer(resp, req.JSON)
}

// geminiAnswer joins the text parts of the first candidate.
func geminiAnswer(resp *genai.GenerateContentResponse, asJSON bool) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	answer := b.String()
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if !asJSON {
		return answer, nil
	}
	// a truncated object cannot be parsed by the caller
	if candidate.FinishReason == genai.FinishReasonMaxTokens {
		return "", fmt.Errorf("gemini answer was cut off at the token limit")
	}
	return ExtractJSON(answer), nil
}
