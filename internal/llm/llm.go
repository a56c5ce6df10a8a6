// Package llm talks to the language model providers used to triage
// uncategorized metadata labels.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Request is a single prompt sent to a provider.
type Request struct {
	Model       string
	Temperature float64
	Prompt      string
	// JSON asks the provider to answer with a JSON object.
	JSON bool
}

// Provider completes a prompt.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Names lists the supported provider names.
var Names = []string{"gemini", "ollama", "openai"}

// New returns the provider registered under name, configured from the
// environment.
func New(name string) (Provider, error) {
	switch name {
	case "gemini":
		return NewGemini(os.Getenv("GEMINI_API_KEY")), nil
	case "ollama":
		ollamaURL := os.Getenv("OLLAMA_URL")
		if ollamaURL == "" {
			ollamaURL = os.Getenv("OLLAMA_HOST")
		}
		return NewOllama(ollamaURL), nil
	case "openai":
		return NewOpenAI(os.Getenv("OPENAI_API_KEY")), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// DefaultModel returns the model used for name when none is given.
// TRIAGE_MODEL overrides every provider.
func DefaultModel(name string) string {
	if model := os.Getenv("TRIAGE_MODEL"); model != "" {
		return model
	}

	switch name {
	case "gemini":
		return "gemini-2.0-flash"
	case "openai":
		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			return "gpt-4o"
		}
		return model
	case "ollama":
		model := os.Getenv("OLLAMA_MODEL")
		if model == "" {
			return "mistral-small3.2:24b"
		}
		return model
	default:
		return ""
	}
}

// ExtractJSON trims any prose or code fence around the outermost object of a
// model answer.
func ExtractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
