package adaptor

import (
	"encoding/json"

	"github.com/prismstudio/director-core/relay/model"
	"github.com/prismstudio/director-core/relay/prompt"
)

// The normalizer is an ordered chain of candidate extractors. Each extractor
// either claims the raw payload and produces a typed plan, or passes. The
// first hit wins; when none hit, the raw text survives as fallbackText and
// the result stays unset — degraded but not fatal.

// candidateTexts flattens every place a provider might hide the real payload:
// the value itself, a JSON string, or a nested predictions/candidates tree.
func candidateTexts(raw any) []any {
	var out []any
	if raw == nil {
		return out
	}
	out = append(out, raw)

	m, ok := raw.(map[string]any)
	if !ok {
		return out
	}
	for _, listKey := range []string{"predictions", "candidates"} {
		list, ok := m[listKey].([]any)
		if !ok {
			continue
		}
		for _, item := range list {
			out = append(out, candidateTexts(item)...)
		}
	}
	if content, ok := m["content"].(map[string]any); ok {
		if parts, ok := content["parts"].([]any); ok {
			for _, part := range parts {
				if pm, ok := part.(map[string]any); ok {
					if text, ok := pm["text"].(string); ok {
						out = append(out, text)
					}
				}
			}
		}
	}
	return out
}

func asObject(candidate any) (map[string]any, bool) {
	switch v := candidate.(type) {
	case map[string]any:
		return v, true
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(prompt.StripCodeFence(v)), &m); err == nil {
			return m, true
		}
	}
	return nil, false
}

func extractScenePlan(candidate any) (*model.ScenePlan, bool) {
	obj, ok := asObject(candidate)
	if !ok {
		return nil, false
	}
	scenesRaw, ok := obj["scenes"].([]any)
	if !ok {
		scenesRaw, ok = obj["storyboard"].([]any)
	}
	if !ok || len(scenesRaw) == 0 {
		return nil, false
	}
	plan := &model.ScenePlan{}
	if title, ok := obj["title"].(string); ok {
		plan.Title = title
	}
	for _, sceneRaw := range scenesRaw {
		scene, ok := sceneRaw.(map[string]any)
		if !ok {
			return nil, false
		}
		plan.Scenes = append(plan.Scenes, scene)
	}
	if curve, ok := obj["energy_curve"].([]any); ok {
		for _, e := range curve {
			if s, ok := e.(string); ok {
				plan.EnergyCurve = append(plan.EnergyCurve, s)
			}
		}
	}
	return plan, true
}

func extractLoopPlan(candidate any) (*model.LoopPlan, bool) {
	obj, ok := asObject(candidate)
	if !ok {
		return nil, false
	}
	cyclesRaw, ok := obj["cycles"].([]any)
	if !ok || len(cyclesRaw) == 0 {
		return nil, false
	}
	plan := &model.LoopPlan{}
	for i, cycleRaw := range cyclesRaw {
		cm, ok := cycleRaw.(map[string]any)
		if !ok {
			return nil, false
		}
		cycle := model.Cycle{Order: i + 1}
		if order, ok := cm["order"].(float64); ok {
			cycle.Order = int(order)
		}
		cycle.Description, _ = cm["description"].(string)
		cycle.FrameSpan, _ = cm["frame_span"].(string)

		lockMap, ok := cm["continuity_lock"].(map[string]any)
		if !ok {
			return nil, false
		}
		lock := &model.ContinuityLock{}
		lock.SubjectIdentity, _ = lockMap["subject_identity"].(string)
		lock.LightingPalette, _ = lockMap["lighting_palette"].(string)
		lock.CameraGrammar, _ = lockMap["camera_grammar"].(string)
		lock.EnvironmentMotif, _ = lockMap["environment_motif"].(string)
		// A cycle without a complete lock invalidates the whole candidate.
		if !lock.Complete() {
			return nil, false
		}
		cycle.ContinuityLock = lock

		checks, ok := cm["acceptance_checks"].([]any)
		if !ok || len(checks) == 0 {
			return nil, false
		}
		for _, check := range checks {
			if s, ok := check.(string); ok && s != "" {
				cycle.AcceptanceChecks = append(cycle.AcceptanceChecks, s)
			}
		}
		if len(cycle.AcceptanceChecks) == 0 {
			return nil, false
		}
		plan.Cycles = append(plan.Cycles, cycle)
	}
	return plan, true
}

// NormalizeSuccess maps a provider's raw 2xx payload into the uniform result
// for the requested mode. It never fails: unusable plan payloads degrade to
// fallbackText with the result left unset.
func NormalizeSuccess(mode model.Mode, raw any, rawText string) *model.DirectorResult {
	result := &model.DirectorResult{Success: true, Mode: mode}

	// The flattened reply text is the last candidate: some providers carry
	// the plan only inside a message body the tree walk cannot see.
	candidates := candidateTexts(raw)
	if rawText != "" {
		candidates = append(candidates, rawText)
	}

	switch mode {
	case model.ModeImagePrompt:
		normalizeImagePrompt(result, raw, rawText)
	case model.ModeVideoPlan:
		for _, candidate := range candidates {
			if plan, ok := extractScenePlan(candidate); ok {
				result.Result = &model.GenerationResult{ScenePlan: plan}
				break
			}
		}
		// Raw text is preserved for audit even on a hit.
		result.Text = rawText
		if result.Result == nil {
			result.FallbackText = rawText
		}
	case model.ModeLoopSequence:
		for _, candidate := range candidates {
			if plan, ok := extractLoopPlan(candidate); ok {
				result.Result = &model.GenerationResult{LoopPlan: plan}
				break
			}
		}
		result.Text = rawText
		if result.Result == nil {
			result.FallbackText = rawText
		}
	}

	result.Media = append(result.Media, collectMedia(raw)...)
	return result
}

// normalizeImagePrompt prefers a structured promptText field, falling back to
// labeled sections in the plain text.
func normalizeImagePrompt(result *model.DirectorResult, raw any, rawText string) {
	if obj, ok := asObject(raw); ok {
		if promptText, ok := obj["promptText"].(string); ok && promptText != "" {
			gen := &model.GenerationResult{PromptText: promptText}
			gen.NegativePrompt, _ = obj["negativePrompt"].(string)
			result.Result = gen
			result.Text = rawText
			return
		}
	}
	positive := prompt.ExtractSection(rawText, prompt.SectionPositivePrompt)
	if positive == "" {
		result.FallbackText = rawText
		return
	}
	result.Result = &model.GenerationResult{
		PromptText:     positive,
		NegativePrompt: prompt.ExtractSection(rawText, prompt.SectionNegativePrompt),
		Settings:       prompt.ParseSettings(prompt.ExtractSection(rawText, prompt.SectionSettings)),
		Summary:        prompt.ExtractSection(rawText, prompt.SectionSummary),
		MoodMemory:     prompt.ExtractSection(rawText, prompt.SectionMoodMemory),
	}
	result.Text = rawText
}
