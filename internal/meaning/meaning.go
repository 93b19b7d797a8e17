// Package meaning asks a language model to explain a selected passage in the
// context of its surrounding paragraph. Explanations are informational only
// and never enter the annotation data model.
package meaning

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultOllamaModel = "ministral-3:latest"
	// Selection plus surrounding paragraph stay tiny compared to a model
	// window, but runaway containers (whole scanned pages) are still clipped.
	maxSurroundingChars = 12_000
)

const defaultHTTPTimeout = 2 * time.Minute

// Config describes how to build an explanation client.
type Config struct {
	Model      string
	Endpoint   string
	HTTPClient *http.Client
}

// Client produces a free-text explanation for a selection.
type Client interface {
	Explain(ctx context.Context, selection, surrounding string) (string, error)
	Name() string
}

// NewFromEnv inspects flags & environment variables to build a client.
func NewFromEnv(cfg Config) (Client, error) {
	host := cfg.Endpoint
	if host == "" {
		if env := os.Getenv("OLLAMA_HOST"); env != "" {
			host = strings.TrimRight(env, "/")
		} else {
			host = "http://localhost:11434"
		}
	}
	model := cfg.Model
	if model == "" {
		if env := os.Getenv("OLLAMA_MODEL"); env != "" {
			model = env
		} else {
			model = defaultOllamaModel
		}
	}
	return &ollamaClient{
		host:   host,
		model:  model,
		client: pickHTTPClient(cfg.HTTPClient),
	}, nil
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Local models often need >60s to answer; the caller's context handles cancellation.
	return &http.Client{Timeout: defaultHTTPTimeout}
}
