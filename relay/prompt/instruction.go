package prompt

import (
	"fmt"
	"strings"

	"github.com/prismstudio/director-core/relay/model"
)

// Instruction builders compose the system instruction and user prompt sent to
// a provider. Every builder pins the reply format to the labeled sections the
// extractor understands, so normalization stays deterministic.

const seedReplyFormat = `Reply in plain text with exactly these sections:
Summary: <one-paragraph restatement of the creative brief>
Mood Memory: <one short phrase capturing the emotional tone>`

const generateReplyFormat = `Reply in plain text with exactly these sections, in this order:
Positive Prompt: <the full generation prompt>
Negative Prompt: <what to avoid>
Settings: <one "key: value" pair per line>
Summary: <refreshed summary>
Mood Memory: <refreshed mood phrase>`

func writeControls(b *strings.Builder, controls map[string][]string) {
	for _, category := range model.ControlCategories {
		if len(controls[category]) == 0 {
			continue
		}
		fmt.Fprintf(b, "- %s: %s\n", category, strings.Join(controls[category], ", "))
	}
}

// BuildSeedInstruction opens an image-prompt conversation.
func BuildSeedInstruction(p *model.ImagePromptPayload, snippets []string) (system string, user string) {
	var b strings.Builder
	b.WriteString("You are a cinematography director helping compose a still-image generation prompt.\n")
	b.WriteString("Restate the creative brief as a summary the user can confirm before generation.\n")
	b.WriteString(seedReplyFormat)

	var u strings.Builder
	fmt.Fprintf(&u, "Vision seed: %s\n", p.VisionSeedText)
	if p.MoodProfile != "" {
		fmt.Fprintf(&u, "Mood profile: %s\n", p.MoodProfile)
	}
	if p.Constraints != "" {
		fmt.Fprintf(&u, "Constraints: %s\n", p.Constraints)
	}
	for _, s := range snippets {
		if s != "" {
			fmt.Fprintf(&u, "Visual anchor: %s\n", s)
		}
	}
	writeControls(&u, p.Controls)
	return b.String(), u.String()
}

// BuildReviseInstruction reworks a summary the user rejected.
func BuildReviseInstruction(summary string, feedback string) (system string, user string) {
	system = "You are revising a creative summary the user did not confirm. Fold the feedback in without discarding what already works.\n" + seedReplyFormat
	user = fmt.Sprintf("Current summary:\n%s\n\nUser feedback:\n%s\n", summary, feedback)
	return system, user
}

// BuildGenerateInstruction produces the final prompt-composition call. The
// anchors are the visual snippets captured at seed time, repeated so the final
// prompt cannot drift away from them.
func BuildGenerateInstruction(seedText, summary, moodMemory string, refinements []string, anchors []string) (system string, user string) {
	system = "You are a cinematography director composing the final image-generation prompt from a confirmed brief.\n" + generateReplyFormat

	var u strings.Builder
	fmt.Fprintf(&u, "Vision seed: %s\n", seedText)
	fmt.Fprintf(&u, "Confirmed summary:\n%s\n", summary)
	for _, anchor := range anchors {
		if anchor != "" {
			fmt.Fprintf(&u, "Visual anchor: %s\n", anchor)
		}
	}
	if moodMemory != "" {
		fmt.Fprintf(&u, "Mood memory: %s\n", moodMemory)
	}
	if len(refinements) > 0 {
		u.WriteString("Refinements, in order:\n")
		for i, r := range refinements {
			fmt.Fprintf(&u, "%d. %s\n", i+1, r)
		}
	}
	return system, u.String()
}

// BuildVideoPlanInstruction asks for a storyboard as strict JSON.
func BuildVideoPlanInstruction(p *model.VideoPlanPayload) (system string, user string) {
	system = `You are a video director planning a multi-scene storyboard.
Reply with a single JSON object: {"title": string, "scenes": [{"order": int, "title": string, "description": string, "camera_notes": string, "duration_seconds": number}], "energy_curve": [string]}.
No prose outside the JSON.`

	var u strings.Builder
	fmt.Fprintf(&u, "Vision seed: %s\n", p.VisionSeedText)
	fmt.Fprintf(&u, "Tone: %s\nVisual style: %s\nAspect ratio: %s\n", p.Tone, p.VisualStyle, p.AspectRatio)
	if p.MoodProfile != "" {
		fmt.Fprintf(&u, "Mood profile: %s\n", p.MoodProfile)
	}
	writeControls(&u, p.Controls)
	if p.PlannerContext != "" {
		fmt.Fprintf(&u, "Beat planning context:\n%s\n", p.PlannerContext)
	}
	fmt.Fprintf(&u, "Script:\n%s\n", p.ScriptText)
	return system, u.String()
}

// BuildLoopInstruction asks for a seamless loop plan as strict JSON.
func BuildLoopInstruction(p *model.LoopSequencePayload) (system string, user string) {
	system = `You are planning a seamless video loop.
Reply with a single JSON object: {"cycles": [{"order": int, "description": string, "frame_span": string, "continuity_lock": {"subject_identity": string, "lighting_palette": string, "camera_grammar": string, "environment_motif": string}, "acceptance_checks": [string]}]}.
The last cycle must hand off cleanly to the first. No prose outside the JSON.`

	var u strings.Builder
	fmt.Fprintf(&u, "Vision seed: %s\n", p.VisionSeedText)
	fmt.Fprintf(&u, "Start frame: %s\n", p.StartFrameDescription)
	if p.LoopLength != nil {
		fmt.Fprintf(&u, "Loop length: %d frames\n", *p.LoopLength)
	} else {
		u.WriteString("Loop length: planner's choice\n")
	}
	if p.MoodProfile != "" {
		fmt.Fprintf(&u, "Mood profile: %s\n", p.MoodProfile)
	}
	writeControls(&u, p.Controls)
	return system, u.String()
}
