package llm

import (
	"os"
	"path/filepath"
	"strings"
)

// transcriptPlaceholder marks where the transcript is substituted into a
// prompt template.
const transcriptPlaceholder = "{transcript}"

// builtinPrompt is used when no template file is available on disk. It asks
// for the evaluation record shape the extraction stage expects.
const builtinPrompt = `You are an OSCE examiner reviewing a clinical encounter between a medical student and a standardized patient.

Evaluate the student's performance using the transcript below. Respond with a single JSON object and nothing else. The object must contain:
- "summary": a short narrative assessment of the encounter
- "checklist": an array of objects, each with "item", "status" ("Yes", "No", or "Not Sure"), "evidence", and "timestamp" (HH:MM:SS)

Transcript:
{transcript}`

// PromptStore loads named prompt templates from a directory, falling back to
// a default template file and finally to the built-in prompt.
type PromptStore struct {
	dir         string
	defaultName string
}

// NewPromptStore creates a store rooted at dir. defaultName is the template
// used when a requested name is absent; empty means "prompt.txt".
func NewPromptStore(dir, defaultName string) *PromptStore {
	if defaultName == "" {
		defaultName = "prompt.txt"
	}
	return &PromptStore{dir: dir, defaultName: defaultName}
}

// Load returns the template for name. Resolution order: the named file, the
// default file, the built-in prompt. name may be empty to start at the
// default. Missing files are not errors; only the built-in step cannot fail.
func (s *PromptStore) Load(name string) string {
	if name != "" {
		if body, err := os.ReadFile(filepath.Join(s.dir, name)); err == nil {
			return string(body)
		}
	}
	if body, err := os.ReadFile(filepath.Join(s.dir, s.defaultName)); err == nil {
		return string(body)
	}
	return builtinPrompt
}

// Render substitutes the transcript into a template. Templates without the
// placeholder get the transcript appended so it is never silently dropped.
func Render(template, transcript string) string {
	if strings.Contains(template, transcriptPlaceholder) {
		return strings.ReplaceAll(template, transcriptPlaceholder, transcript)
	}
	return template + "\n\nTranscript:\n" + transcript
}
