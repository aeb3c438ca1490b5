// Package suggest offers canned composer phrases matching the current draft.
package suggest

import (
	"strings"
)

// maxSuggestions caps how many entries a draft may surface.
const maxSuggestions = 3

// Suggestion is one curated phrase: the label shown to the user and the text
// actually sent when selected.
type Suggestion struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// defaultList is the fixed, ordered phrase list.
var defaultList = []Suggestion{
	{Label: "Explore JavaScript", Value: "explore javascript"},
	{Label: "Find Challenges", Value: "find challenges"},
	{Label: "Show Coding Tips", Value: "coding tips"},
	{Label: "Talk to a Mentor", Value: "talk to a mentor"},
	{Label: "How does Kodex work?", Value: "how does kodex work?"},
	{Label: "Tell me a programming joke", Value: "tell me a programming joke"},
}

// Engine filters the phrase list against draft text. It holds no mutable state.
type Engine struct {
	list []Suggestion
}

// NewEngine creates an engine over the default curated list.
func NewEngine() *Engine {
	return &Engine{list: defaultList}
}

// NewEngineWithList creates an engine over a custom ordered list.
func NewEngineWithList(list []Suggestion) *Engine {
	return &Engine{list: list}
}

// Suggest returns up to three entries whose label contains the trimmed draft
// as a case-insensitive substring, preserving the list's relative order. An
// empty or whitespace-only draft yields no suggestions.
func (e *Engine) Suggest(draft string) []Suggestion {
	draft = strings.TrimSpace(draft)
	if draft == "" {
		return nil
	}

	needle := strings.ToLower(draft)
	var out []Suggestion
	for _, s := range e.list {
		if strings.Contains(strings.ToLower(s.Label), needle) {
			out = append(out, s)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}
