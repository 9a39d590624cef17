package report

import (
	"context"

	apperrors "github.com/skillsenselab/osce-insight/internal/errors"
	"github.com/skillsenselab/osce-insight/internal/llm"
)

// Generator turns a formatted transcript into raw model output using a named
// prompt template.
type Generator struct {
	backend llm.Generator
	prompts *llm.PromptStore
	modelID string
}

// NewGenerator creates a report generator. modelID is the default model for
// requests that do not name one.
func NewGenerator(backend llm.Generator, prompts *llm.PromptStore, modelID string) *Generator {
	return &Generator{backend: backend, prompts: prompts, modelID: modelID}
}

// Generate renders the prompt template named by promptName (empty selects
// the default) around the transcript and returns the raw model response.
func (g *Generator) Generate(ctx context.Context, transcript, promptName string) (string, error) {
	prompt := llm.Render(g.prompts.Load(promptName), transcript)
	raw, err := g.backend.Generate(ctx, llm.Request{
		ModelID: g.modelID,
		Prompt:  prompt,
	})
	if err != nil {
		return "", apperrors.GenerationFailed(err)
	}
	return raw, nil
}

// ModelID reports the default model identity stamped onto reports.
func (g *Generator) ModelID() string { return g.modelID }
