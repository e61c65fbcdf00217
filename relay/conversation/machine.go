package conversation

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/prismstudio/director-core/relay/model"
	"github.com/prismstudio/director-core/relay/prompt"
)

// CallFn is the narrow provider capability the machine depends on: given a
// system instruction and a user prompt, return the raw reply text.
type CallFn func(ctx context.Context, system string, user string) (string, *model.ErrorWithStatusCode)

// Machine drives the image-prompt flow: seed -> confirm -> refine -> generate,
// with confirm able to loop on itself while the user keeps rejecting the
// summary. Every method mutates and returns the context; persisting it back
// into a token is the caller's job.
type Machine struct {
	Provider string
	Call     CallFn
}

// Seed starts a conversation: one provider call, then the context is
// initialized from the extracted summary. A reply without an extractable
// summary fails the stage and no context is created.
func (m *Machine) Seed(ctx context.Context, p *model.ImagePromptPayload) (*Context, *model.ErrorWithStatusCode) {
	snippets := SnippetsFromSelections(p.Controls, p.Glossary)
	system, user := prompt.BuildSeedInstruction(p, snippets[:])

	reply, errResp := m.Call(ctx, system, user)
	if errResp != nil {
		return nil, errResp
	}
	summary := prompt.ExtractSection(reply, prompt.SectionSummary)
	if summary == "" {
		return nil, model.NewMalformedResponseError(m.Provider, "seed reply carries no extractable Summary section")
	}

	c := &Context{
		Version:            ContextVersion,
		Id:                 uuid.New().String(),
		VisionSeedText:     p.VisionSeedText,
		Model:              p.Model,
		CameraSnippet:      snippets[0],
		LightingSnippet:    snippets[1],
		PaletteSnippet:     snippets[2],
		EnvironmentSnippet: snippets[3],
		Summary:            summary,
		MoodMemory:         prompt.ExtractSection(reply, prompt.SectionMoodMemory),
		Stage:              model.StageConfirm,
	}
	if c.MoodMemory == "" {
		c.MoodMemory = p.MoodProfile
	}
	return c, nil
}

// Confirm either advances to refine (no provider call) or revises the summary
// with the user's feedback and stays in confirm. The revision loop is
// unbounded by design: the caller decides when to stop.
func (m *Machine) Confirm(ctx context.Context, c *Context, confirmed bool, feedback string) *model.ErrorWithStatusCode {
	if c.Stage != model.StageConfirm {
		return model.NewValidationErrorf("stage", "conversation is in stage %s, not confirm", c.Stage)
	}
	if confirmed {
		c.Confirmed = true
		c.Stage = model.StageRefine
		return nil
	}
	if strings.TrimSpace(feedback) == "" {
		return model.NewValidationErrorf("feedback", "must be non-empty when confirmed is false")
	}

	system, user := prompt.BuildReviseInstruction(c.Summary, feedback)
	reply, errResp := m.Call(ctx, system, user)
	if errResp != nil {
		return errResp
	}
	summary := prompt.ExtractSection(reply, prompt.SectionSummary)
	if summary == "" {
		return model.NewMalformedResponseError(m.Provider, "revision reply carries no extractable Summary section")
	}
	c.Summary = summary
	if mood := prompt.ExtractSection(reply, prompt.SectionMoodMemory); mood != "" {
		c.MoodMemory = mood
	}
	return nil
}

// Refine applies the refinement commands locally, then immediately runs the
// implicit generate stage.
func (m *Machine) Refine(ctx context.Context, c *Context, commands []string, moodMemory string) *model.ErrorWithStatusCode {
	if c.Stage != model.StageRefine {
		return model.NewValidationErrorf("stage", "conversation is in stage %s, not refine", c.Stage)
	}
	c.AppendRefinements(commands)
	if trimmed := strings.TrimSpace(moodMemory); trimmed != "" {
		c.MoodMemory = trimmed
	}
	return m.generate(ctx, c)
}

// generate runs the final provider call. All three output sections are
// required; a partial reply fails the stage without advancing the context.
func (m *Machine) generate(ctx context.Context, c *Context) *model.ErrorWithStatusCode {
	system, user := prompt.BuildGenerateInstruction(c.VisionSeedText, c.Summary, c.MoodMemory, c.RefinementCommands, c.Snippets())
	reply, errResp := m.Call(ctx, system, user)
	if errResp != nil {
		return errResp
	}

	positive := prompt.ExtractSection(reply, prompt.SectionPositivePrompt)
	negative := prompt.ExtractSection(reply, prompt.SectionNegativePrompt)
	settingsBlock := prompt.ExtractSection(reply, prompt.SectionSettings)
	if positive == "" || negative == "" || settingsBlock == "" {
		return model.NewMalformedResponseError(m.Provider,
			"generate reply must carry Positive Prompt, Negative Prompt and Settings sections")
	}

	c.PositivePrompt = positive
	c.NegativePrompt = negative
	c.Settings = prompt.ParseSettings(settingsBlock)
	if summary := prompt.ExtractSection(reply, prompt.SectionSummary); summary != "" {
		c.Summary = summary
	}
	if mood := prompt.ExtractSection(reply, prompt.SectionMoodMemory); mood != "" {
		c.MoodMemory = mood
	}
	c.Stage = model.StageGenerate
	return nil
}
