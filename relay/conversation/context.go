package conversation

import (
	"strings"

	"github.com/prismstudio/director-core/relay/model"
)

// ContextVersion tags the serialized context so future schema changes can be
// validated instead of assumed.
const ContextVersion = 1

// Context is the mutable record threaded across the image-prompt stages. The
// signed token attached to every response is its only carrier: the server
// keeps nothing between calls.
type Context struct {
	Version int    `json:"v"`
	Id      string `json:"id"`

	VisionSeedText string `json:"seed"`
	Model          string `json:"model"`

	// Single-selection visual snippets captured at seed time.
	CameraSnippet      string `json:"camera_snippet,omitempty"`
	LightingSnippet    string `json:"lighting_snippet,omitempty"`
	PaletteSnippet     string `json:"palette_snippet,omitempty"`
	EnvironmentSnippet string `json:"environment_snippet,omitempty"`

	Summary            string   `json:"summary,omitempty"`
	Confirmed          bool     `json:"confirmed"`
	RefinementCommands []string `json:"refinements,omitempty"`
	MoodMemory         string   `json:"mood_memory,omitempty"`

	// Populated by the generate stage.
	PositivePrompt string            `json:"positive_prompt,omitempty"`
	NegativePrompt string            `json:"negative_prompt,omitempty"`
	Settings       map[string]string `json:"settings,omitempty"`

	Stage string `json:"stage"`
}

// Snippets returns the four visual anchors in a fixed order for prompt
// composition.
func (c *Context) Snippets() []string {
	return []string{c.CameraSnippet, c.LightingSnippet, c.PaletteSnippet, c.EnvironmentSnippet}
}

// snippetCategories maps each context snippet to the control category that
// feeds it.
var snippetCategories = []string{"camera_angle", "lighting", "palette", "atmosphere"}

// SnippetsFromSelections resolves the first selected option of each snippet
// category to its glossary prompt snippet. Selections without a glossary
// entry fall back to the raw option id.
func SnippetsFromSelections(controls map[string][]string, glossary map[string][]model.GlossaryEntry) [4]string {
	var out [4]string
	for i, category := range snippetCategories {
		selected := controls[category]
		if len(selected) == 0 {
			continue
		}
		id := selected[0]
		out[i] = id
		for _, entry := range glossary[category] {
			if entry.Id == id {
				out[i] = entry.PromptSnippet
				break
			}
		}
	}
	return out
}

// AppendRefinements adds commands in order, discarding whitespace-only entries.
func (c *Context) AppendRefinements(commands []string) {
	for _, cmd := range commands {
		if trimmed := strings.TrimSpace(cmd); trimmed != "" {
			c.RefinementCommands = append(c.RefinementCommands, trimmed)
		}
	}
}
