package adaptor

import (
	"encoding/json"
	"testing"

	"github.com/prismstudio/director-core/relay/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storyboardJSON = `{
	"title": "Expedition",
	"scenes": [
		{"order": 1, "title": "Departure", "description": "They set out at dawn."},
		{"order": 2, "title": "The Ridge", "description": "Snow begins to fall."}
	],
	"energy_curve": ["grounded", "rising"]
}`

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestVideoPlanDirectObject(t *testing.T) {
	result := NormalizeSuccess(model.ModeVideoPlan, decode(t, storyboardJSON), storyboardJSON)
	require.NotNil(t, result.Result)
	require.NotNil(t, result.Result.ScenePlan)
	assert.Len(t, result.Result.ScenePlan.Scenes, 2)
	assert.Equal(t, "Expedition", result.Result.ScenePlan.Title)
	assert.Empty(t, result.FallbackText)
}

func TestVideoPlanJSONString(t *testing.T) {
	fenced := "```json\n" + storyboardJSON + "\n```"
	result := NormalizeSuccess(model.ModeVideoPlan, fenced, fenced)
	require.NotNil(t, result.Result)
	assert.Len(t, result.Result.ScenePlan.Scenes, 2)
}

func TestVideoPlanPredictionTree(t *testing.T) {
	// predictions[0].candidates[0].content.parts[0].text holds the plan.
	tree := map[string]any{
		"predictions": []any{
			map[string]any{
				"candidates": []any{
					map[string]any{
						"content": map[string]any{
							"parts": []any{
								map[string]any{"text": storyboardJSON},
							},
						},
					},
				},
			},
		},
	}
	result := NormalizeSuccess(model.ModeVideoPlan, tree, storyboardJSON)
	require.NotNil(t, result.Result, "nested prediction tree should yield a plan")
	assert.NotEmpty(t, result.Result.ScenePlan.Scenes)
	// Original raw text preserved for audit.
	assert.Equal(t, storyboardJSON, result.Text)
}

func TestVideoPlanStoryboardKey(t *testing.T) {
	payload := `{"storyboard": [{"order": 1, "description": "only scene"}]}`
	result := NormalizeSuccess(model.ModeVideoPlan, decode(t, payload), payload)
	require.NotNil(t, result.Result)
	assert.Len(t, result.Result.ScenePlan.Scenes, 1)
}

func TestVideoPlanDegradedFallback(t *testing.T) {
	text := "INT. ALLEY - NIGHT. No JSON anywhere."
	result := NormalizeSuccess(model.ModeVideoPlan, text, text)
	assert.True(t, result.Success, "unparseable plan output is degraded, not fatal")
	assert.Nil(t, result.Result)
	assert.Equal(t, text, result.FallbackText)
}

func loopJSON(cycles int, breakLock bool) string {
	type lock struct {
		Subject string `json:"subject_identity"`
		Light   string `json:"lighting_palette"`
		Camera  string `json:"camera_grammar"`
		Env     string `json:"environment_motif"`
	}
	type cycle struct {
		Order  int      `json:"order"`
		Desc   string   `json:"description"`
		Lock   lock     `json:"continuity_lock"`
		Checks []string `json:"acceptance_checks"`
	}
	var cs []cycle
	for i := 0; i < cycles; i++ {
		c := cycle{
			Order: i + 1,
			Desc:  "cycle",
			Lock:  lock{"lone figure", "neon wash", "locked wide", "rain-slick alley"},
			Checks: []string{"first and last frame align"},
		}
		if breakLock && i == cycles-1 {
			c.Lock.Env = ""
		}
		cs = append(cs, c)
	}
	raw, _ := json.Marshal(map[string]any{"cycles": cs})
	return string(raw)
}

func TestLoopSequenceValidCycles(t *testing.T) {
	payload := loopJSON(3, false)
	result := NormalizeSuccess(model.ModeLoopSequence, payload, payload)
	require.NotNil(t, result.Result)
	require.NotNil(t, result.Result.LoopPlan)
	require.Len(t, result.Result.LoopPlan.Cycles, 3)
	for _, c := range result.Result.LoopPlan.Cycles {
		assert.True(t, c.ContinuityLock.Complete())
		assert.NotEmpty(t, c.AcceptanceChecks)
	}
}

func TestLoopSequenceIncompleteLockRejected(t *testing.T) {
	payload := loopJSON(3, true)
	result := NormalizeSuccess(model.ModeLoopSequence, payload, payload)
	assert.Nil(t, result.Result, "a cycle with an incomplete continuity lock invalidates the candidate")
	assert.Equal(t, payload, result.FallbackText)
}

func TestImagePromptStructuredField(t *testing.T) {
	raw := map[string]any{"promptText": "lone figure, neon alley", "negativePrompt": "crowds"}
	result := NormalizeSuccess(model.ModeImagePrompt, raw, "ignored")
	require.NotNil(t, result.Result)
	assert.Equal(t, "lone figure, neon alley", result.Result.PromptText)
	assert.Equal(t, "crowds", result.Result.NegativePrompt)
}

func TestImagePromptSectionFallback(t *testing.T) {
	text := "Positive Prompt: lone figure\nNegative Prompt: crowds\nSettings:\nsteps: 30"
	result := NormalizeSuccess(model.ModeImagePrompt, text, text)
	require.NotNil(t, result.Result)
	assert.Equal(t, "lone figure", result.Result.PromptText)
	assert.Equal(t, "30", result.Result.Settings["steps"])
}

func TestImagePromptNoSectionsDegrades(t *testing.T) {
	text := "just prose with no labels"
	result := NormalizeSuccess(model.ModeImagePrompt, text, text)
	assert.Nil(t, result.Result)
	assert.Equal(t, text, result.FallbackText)
}

func TestMediaInlineData(t *testing.T) {
	raw := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{
						map[string]any{"inlineData": map[string]any{"mimeType": "image/png", "data": "aGk="}},
					},
				},
			},
		},
	}
	result := NormalizeSuccess(model.ModeImagePrompt, raw, "")
	require.Len(t, result.Media, 1)
	assert.Equal(t, "image", result.Media[0].Kind)
	assert.Equal(t, "aGk=", result.Media[0].Data)
}

func TestMediaDurationDefault(t *testing.T) {
	obj := map[string]any{
		"frames":     []any{"f1", "f2", "f3"},
		"frame_rate": 1.5,
	}
	asset, ok := assetFromObject(obj)
	require.True(t, ok)
	assert.Equal(t, "video", asset.Kind)
	assert.InDelta(t, 2.0, asset.DurationSeconds, 1e-9)
}

func TestMediaExplicitDurationWins(t *testing.T) {
	obj := map[string]any{
		"url":              "https://example.com/clip.mp4",
		"mime_type":        "video/mp4",
		"duration_seconds": 12.0,
		"frame_rate":       24.0,
	}
	asset, ok := assetFromObject(obj)
	require.True(t, ok)
	assert.Equal(t, 12.0, asset.DurationSeconds)
}
