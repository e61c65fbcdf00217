package validator

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/prismstudio/director-core/relay/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func validImagePromptBody() map[string]any {
	return map[string]any{
		"mode":             "image_prompt",
		"vision_seed_text": "neon alley at dusk",
		"model":            "gemini",
		"visual_controls": map[string]any{
			"camera_angle": []any{"low_angle"},
			"lighting":     []any{"neon_wash", "rim_light"},
		},
		"glossary": map[string]any{
			"camera_angle": []any{
				map[string]any{
					"id":            "low_angle",
					"label":         "Low angle",
					"tooltip":       "Camera looks up at the subject",
					"promptSnippet": "dramatic low-angle shot",
				},
			},
		},
	}
}

func TestNormalizeInvalidJSON(t *testing.T) {
	_, errResp := Normalize([]byte("{not json"))
	require.NotNil(t, errResp)
	assert.Equal(t, model.ErrorTypeInvalidBody, errResp.Type)
	assert.Equal(t, 400, errResp.StatusCode)
}

func TestNormalizeUnknownMode(t *testing.T) {
	_, errResp := Normalize(mustJSON(t, map[string]any{"mode": "poem"}))
	require.NotNil(t, errResp)
	assert.Equal(t, model.ErrorTypeValidation, errResp.Type)
	assert.Contains(t, errResp.Message, "mode")
}

func TestNormalizeImagePromptValid(t *testing.T) {
	envelope, errResp := Normalize(mustJSON(t, validImagePromptBody()))
	require.Nil(t, errResp)
	require.NotNil(t, envelope.ImagePrompt)

	p := envelope.ImagePrompt
	assert.Equal(t, model.ModeImagePrompt, envelope.Mode)
	assert.Equal(t, "gemini", p.Model)
	assert.Equal(t, model.StageSeed, p.Stage)

	// All seven categories are present, selected or not.
	assert.Len(t, p.Controls, len(model.ControlCategories))
	for _, category := range model.ControlCategories {
		_, ok := p.Controls[category]
		assert.True(t, ok, "category %s missing", category)
	}
	assert.Equal(t, []string{"neon_wash", "rim_light"}, p.Controls["lighting"])
}

func TestNormalizeImagePromptUnknownCategoryIgnored(t *testing.T) {
	body := validImagePromptBody()
	body["visual_controls"].(map[string]any)["hologram_density"] = []any{"max"}
	envelope, errResp := Normalize(mustJSON(t, body))
	require.Nil(t, errResp)
	_, ok := envelope.ImagePrompt.Controls["hologram_density"]
	assert.False(t, ok)
}

func TestNormalizeControlsFilterNonStrings(t *testing.T) {
	body := validImagePromptBody()
	body["visual_controls"].(map[string]any)["lighting"] = []any{"neon_wash", 42, "", true, "rim_light"}
	envelope, errResp := Normalize(mustJSON(t, body))
	require.Nil(t, errResp)
	assert.Equal(t, []string{"neon_wash", "rim_light"}, envelope.ImagePrompt.Controls["lighting"])
}

func TestNormalizeModelEnum(t *testing.T) {
	body := validImagePromptBody()
	body["model"] = "stable-diffusion"
	_, errResp := Normalize(mustJSON(t, body))
	require.NotNil(t, errResp)
	assert.Contains(t, errResp.Message, "model")
}

func TestNormalizeGlossaryFailClosed(t *testing.T) {
	// One malformed entry invalidates the request, however many are fine.
	body := validImagePromptBody()
	body["glossary"].(map[string]any)["camera_angle"] = []any{
		map[string]any{
			"id":            "low_angle",
			"label":         "Low angle",
			"tooltip":       "Camera looks up",
			"promptSnippet": "dramatic low-angle shot",
		},
		map[string]any{
			"id":      "high_angle",
			"label":   "High angle",
			"tooltip": "", // empty required field
		},
	}
	_, errResp := Normalize(mustJSON(t, body))
	require.NotNil(t, errResp)
	assert.Equal(t, model.ErrorTypeValidation, errResp.Type)
	assert.Contains(t, errResp.Message, "glossary")
}

func TestNormalizeConfirmStage(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]any)
		wantErr string
	}{
		{
			name: "confirmed true",
			mutate: func(b map[string]any) {
				b["confirmed"] = true
			},
		},
		{
			name: "rejected with feedback",
			mutate: func(b map[string]any) {
				b["confirmed"] = false
				b["feedback"] = "make it warmer"
			},
		},
		{
			name: "rejected without feedback",
			mutate: func(b map[string]any) {
				b["confirmed"] = false
			},
			wantErr: "feedback",
		},
		{
			name:    "missing confirmed",
			mutate:  func(b map[string]any) {},
			wantErr: "confirmed",
		},
		{
			name: "missing token",
			mutate: func(b map[string]any) {
				b["confirmed"] = true
				delete(b, "conversation_token")
			},
			wantErr: "conversation_token",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]any{
				"mode":               "image_prompt",
				"stage":              "confirm",
				"conversation_token": "opaque-token",
			}
			tt.mutate(body)
			_, errResp := Normalize(mustJSON(t, body))
			if tt.wantErr == "" {
				assert.Nil(t, errResp)
			} else {
				require.NotNil(t, errResp)
				assert.Contains(t, errResp.Message, tt.wantErr)
			}
		})
	}
}

func validVideoPlanBody() map[string]any {
	return map[string]any{
		"mode":             "video_plan",
		"vision_seed_text": "a mountain expedition",
		"script_text":      "They climb. They descend.",
		"tone":             "epic",
		"visual_style":     "cinematic",
		"aspect_ratio":     "16:9",
	}
}

func TestNormalizeVideoPlanValid(t *testing.T) {
	envelope, errResp := Normalize(mustJSON(t, validVideoPlanBody()))
	require.Nil(t, errResp)
	require.NotNil(t, envelope.VideoPlan)
	assert.Equal(t, "epic", envelope.VideoPlan.Tone)
}

func TestNormalizeVideoPlanEnums(t *testing.T) {
	tests := []struct {
		field string
		value any
	}{
		{"tone", "gritty"},
		{"visual_style", "vaporwave"},
		{"aspect_ratio", "4:3"},
		// Numeric values are never accepted in place of string enums.
		{"tone", 3},
		{"aspect_ratio", 16.9},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			body := validVideoPlanBody()
			body[tt.field] = tt.value
			_, errResp := Normalize(mustJSON(t, body))
			require.NotNil(t, errResp)
			assert.Contains(t, errResp.Message, tt.field)
		})
	}
}

func validLoopBody() map[string]any {
	return map[string]any{
		"mode":                    "loop_sequence",
		"vision_seed_text":        "neon alley",
		"start_frame_description": "wide establishing shot",
	}
}

func TestNormalizeLoopLength(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  *int
		ok    bool
	}{
		{"positive int", 48, intPtr(48), true},
		{"null means planner choice", nil, nil, true},
		{"absent", "absent", nil, true},
		{"string rejected", "48", nil, false},
		{"bool rejected", true, nil, false},
		{"zero rejected", 0, nil, false},
		{"negative rejected", -3, nil, false},
		{"fraction rejected", 47.5, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validLoopBody()
			if s, isString := tt.value.(string); !(isString && s == "absent") {
				body["loop_length"] = tt.value
			}
			envelope, errResp := Normalize(mustJSON(t, body))
			if !tt.ok {
				require.NotNil(t, errResp)
				assert.Contains(t, errResp.Message, "loop_length")
				return
			}
			require.Nil(t, errResp)
			if tt.want == nil {
				assert.Nil(t, envelope.LoopSequence.LoopLength)
			} else {
				require.NotNil(t, envelope.LoopSequence.LoopLength)
				assert.Equal(t, *tt.want, *envelope.LoopSequence.LoopLength)
			}
		})
	}
}

func TestNormalizeCollectsAllErrors(t *testing.T) {
	_, errResp := Normalize(mustJSON(t, map[string]any{
		"mode": "video_plan",
		"tone": "epic",
	}))
	require.NotNil(t, errResp)
	// Several required fields missing; all reported at once.
	assert.True(t, strings.Count(errResp.Message, ";") >= 2, "message: %s", errResp.Message)
}

func TestNormalizeInlineImages(t *testing.T) {
	// 1x1 transparent png
	png := "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="
	body := validLoopBody()
	body["images"] = []any{
		png,
		map[string]any{"data_url": png, "caption": "reference frame"},
	}
	envelope, errResp := Normalize(mustJSON(t, body))
	require.Nil(t, errResp)
	require.Len(t, envelope.Images, 2)
	assert.Equal(t, "image/png", envelope.Images[0].MimeType)
	assert.Equal(t, "reference frame", envelope.Images[1].Caption)
}

func TestNormalizeBadInlineImage(t *testing.T) {
	body := validLoopBody()
	body["images"] = []any{"https://example.com/not-a-data-url.png"}
	_, errResp := Normalize(mustJSON(t, body))
	require.NotNil(t, errResp)
	assert.Contains(t, errResp.Message, "images[0]")
}

func TestNormalizeUndecodableInlineImage(t *testing.T) {
	body := validLoopBody()
	// Valid base64, but the payload is not an image.
	body["images"] = []any{"data:image/png;base64,aGVsbG8="}
	_, errResp := Normalize(mustJSON(t, body))
	require.NotNil(t, errResp)
	assert.Contains(t, errResp.Message, "decodable")
}

func intPtr(n int) *int { return &n }
