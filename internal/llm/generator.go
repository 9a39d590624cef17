// Package llm defines the text-generation contract used for report
// generation. Backends live in subpackages.
package llm

import "context"

// Request is the universal input for a generation call.
type Request struct {
	// ModelID overrides the backend's default model when non-empty.
	ModelID string
	// Prompt is the fully rendered prompt text.
	Prompt string
	// MaxTokens limits the response length. 0 means backend default.
	MaxTokens int
	// Temperature controls randomness. Report generation wants it low.
	Temperature float32
}

// Generator is the interface text-generation backends must implement.
type Generator interface {
	// Name identifies the backend for logging.
	Name() string

	// Generate sends a prompt and returns the complete model response text.
	Generate(ctx context.Context, req Request) (string, error)
}
