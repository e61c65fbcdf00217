package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/prismstudio/director-core/common/image"
	"github.com/prismstudio/director-core/relay/model"
)

var validate = validator.New()

func init() {
	// Report json field names, not Go struct names, in error messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// collector accumulates human-readable field errors so a request reports all
// of its problems at once instead of one per round trip.
type collector struct {
	messages []string
	first    string
}

func (c *collector) addf(field string, format string, a ...any) {
	if c.first == "" {
		c.first = field
	}
	c.messages = append(c.messages, fmt.Sprintf("%s: %s", field, fmt.Sprintf(format, a...)))
}

func (c *collector) failed() bool {
	return len(c.messages) > 0
}

func (c *collector) boundary() *model.ErrorWithStatusCode {
	return model.NewValidationError(c.messages, c.first)
}

// Normalize type-checks and coerces a raw request body into a typed envelope.
// Invalid JSON is the only hard failure with its own kind; everything else is
// reported as a collected validation error.
func Normalize(body []byte) (*model.RequestEnvelope, *model.ErrorWithStatusCode) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, model.NewInvalidBodyError()
	}

	c := &collector{}
	envelope := &model.RequestEnvelope{}

	mode, _ := raw["mode"].(string)
	switch model.Mode(mode) {
	case model.ModeImagePrompt:
		envelope.Mode = model.ModeImagePrompt
		envelope.ImagePrompt = normalizeImagePrompt(raw, c)
	case model.ModeVideoPlan:
		envelope.Mode = model.ModeVideoPlan
		envelope.VideoPlan = normalizeVideoPlan(raw, c)
	case model.ModeLoopSequence:
		envelope.Mode = model.ModeLoopSequence
		envelope.LoopSequence = normalizeLoopSequence(raw, c)
	default:
		c.addf("mode", "must be one of image_prompt, video_plan, loop_sequence")
	}

	envelope.Images = normalizeImages(raw, c)

	if c.failed() {
		return nil, c.boundary()
	}
	return envelope, nil
}

// requiredString returns a trimmed non-empty string field or records an error.
func requiredString(raw map[string]any, field string, c *collector) string {
	v, present := raw[field]
	if !present {
		c.addf(field, "is required")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		c.addf(field, "must be a string")
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		c.addf(field, "must not be empty")
	}
	return s
}

func optionalString(raw map[string]any, field string, c *collector) string {
	v, present := raw[field]
	if !present || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		c.addf(field, "must be a string")
		return ""
	}
	return strings.TrimSpace(s)
}

// stringSlice coerces a JSON array into a string slice: non-string entries are
// filtered out, empty strings dropped.
func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// normalizeControls validates a visual-control mapping against the seven
// recognized categories. Unknown keys are ignored for forward compatibility;
// missing categories default to empty lists.
func normalizeControls(raw map[string]any, field string, c *collector) map[string][]string {
	controls := make(map[string][]string, len(model.ControlCategories))
	for _, category := range model.ControlCategories {
		controls[category] = []string{}
	}
	v, present := raw[field]
	if !present || v == nil {
		return controls
	}
	m, ok := v.(map[string]any)
	if !ok {
		c.addf(field, "must be an object of category -> option id list")
		return controls
	}
	for key, value := range m {
		if _, known := controls[key]; !known {
			continue
		}
		if _, isList := value.([]any); !isList {
			c.addf(fmt.Sprintf("%s.%s", field, key), "must be a list of option ids")
			continue
		}
		controls[key] = stringSlice(value)
	}
	return controls
}

// normalizeGlossary is fail-closed: a single malformed entry (any of the four
// required string fields missing or empty) invalidates the whole request.
func normalizeGlossary(raw map[string]any, c *collector) map[string][]model.GlossaryEntry {
	v, present := raw["glossary"]
	if !present || v == nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		c.addf("glossary", "must be an object of category -> entry list")
		return nil
	}
	glossary := make(map[string][]model.GlossaryEntry)
	for category, value := range m {
		items, ok := value.([]any)
		if !ok {
			c.addf("glossary."+category, "must be a list of entries")
			continue
		}
		entries := make([]model.GlossaryEntry, 0, len(items))
		for i, item := range items {
			entryMap, ok := item.(map[string]any)
			if !ok {
				c.addf(fmt.Sprintf("glossary.%s[%d]", category, i), "must be an object")
				continue
			}
			entry := model.GlossaryEntry{}
			fields := []struct {
				name string
				dst  *string
			}{
				{"id", &entry.Id},
				{"label", &entry.Label},
				{"tooltip", &entry.Tooltip},
				{"promptSnippet", &entry.PromptSnippet},
			}
			for _, f := range fields {
				s, ok := entryMap[f.name].(string)
				if !ok || strings.TrimSpace(s) == "" {
					c.addf(fmt.Sprintf("glossary.%s[%d].%s", category, i, f.name), "must be a non-empty string")
					continue
				}
				*f.dst = strings.TrimSpace(s)
			}
			entries = append(entries, entry)
		}
		glossary[category] = entries
	}
	return glossary
}

func normalizeImages(raw map[string]any, c *collector) []model.InlineImage {
	v, present := raw["images"]
	if !present || v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		c.addf("images", "must be a list")
		return nil
	}
	images := make([]model.InlineImage, 0, len(items))
	for i, item := range items {
		switch t := item.(type) {
		case string:
			img, ok := inlineImageFromDataURL(t, "", i, c)
			if ok {
				images = append(images, img)
			}
		case map[string]any:
			dataURL, _ := t["data_url"].(string)
			caption, _ := t["caption"].(string)
			img, ok := inlineImageFromDataURL(dataURL, caption, i, c)
			if ok {
				images = append(images, img)
			}
		default:
			c.addf(fmt.Sprintf("images[%d]", i), "must be a data URL string or an object with data_url")
		}
	}
	return images
}

func inlineImageFromDataURL(dataURL string, caption string, idx int, c *collector) (model.InlineImage, bool) {
	mimeType, _, err := image.ParseDataURL(dataURL)
	if err != nil {
		c.addf(fmt.Sprintf("images[%d]", idx), "must be a base64 image data URL")
		return model.InlineImage{}, false
	}
	// Decode just the header: rejects payloads that claim an image MIME type
	// but do not carry one.
	if _, _, err := image.SizeFromDataURL(dataURL); err != nil {
		c.addf(fmt.Sprintf("images[%d]", idx), "must carry a decodable png, jpeg, gif or webp payload")
		return model.InlineImage{}, false
	}
	return model.InlineImage{DataURL: dataURL, MimeType: mimeType, Caption: caption}, true
}

// runStructValidation applies the payload's validate tags (required fields and
// closed enums) and folds the failures into readable messages.
func runStructValidation(payload any, c *collector) {
	err := validate.Struct(payload)
	if err == nil {
		return
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		c.addf("payload", "%v", err)
		return
	}
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			c.addf(fe.Field(), "is required")
		case "oneof":
			c.addf(fe.Field(), "must be one of: %s", fe.Param())
		default:
			c.addf(fe.Field(), "failed %s validation", fe.Tag())
		}
	}
}

func normalizeImagePrompt(raw map[string]any, c *collector) *model.ImagePromptPayload {
	p := &model.ImagePromptPayload{
		Glossary:    normalizeGlossary(raw, c),
		MoodProfile: optionalString(raw, "mood_profile", c),
		Constraints: optionalString(raw, "constraints", c),
		Feedback:    optionalString(raw, "feedback", c),
		MoodMemory:  optionalString(raw, "mood_memory", c),
	}
	p.Controls = normalizeControls(raw, "visual_controls", c)
	p.Stage = optionalString(raw, "stage", c)
	if p.Stage == "" {
		p.Stage = model.StageSeed
	}
	p.ConversationToken = optionalString(raw, "conversation_token", c)
	p.RefinementCommands = stringSlice(raw["refinement_commands"])

	if v, present := raw["confirmed"]; present && v != nil {
		b, ok := v.(bool)
		if !ok {
			c.addf("confirmed", "must be a boolean")
		} else {
			p.Confirmed = &b
		}
	}

	// Required fields depend on stage: only the seed stage carries the full
	// creative payload, later stages ride on the conversation token.
	if p.Stage == model.StageSeed {
		p.VisionSeedText = requiredString(raw, "vision_seed_text", c)
		p.Model = requiredString(raw, "model", c)
		if !c.failed() {
			runStructValidation(p, c)
		}
	} else {
		p.VisionSeedText = optionalString(raw, "vision_seed_text", c)
		p.Model = optionalString(raw, "model", c)
		if p.ConversationToken == "" {
			c.addf("conversation_token", "is required for stage %s", p.Stage)
		}
		if p.Stage != model.StageSeed && p.Stage != model.StageConfirm && p.Stage != model.StageRefine {
			c.addf("stage", "must be one of seed, confirm, refine")
		}
		if p.Stage == model.StageConfirm {
			if p.Confirmed == nil {
				c.addf("confirmed", "is required for the confirm stage")
			} else if !*p.Confirmed && strings.TrimSpace(p.Feedback) == "" {
				c.addf("feedback", "must be non-empty when confirmed is false")
			}
		}
	}
	return p
}

func normalizeVideoPlan(raw map[string]any, c *collector) *model.VideoPlanPayload {
	p := &model.VideoPlanPayload{
		VisionSeedText: requiredString(raw, "vision_seed_text", c),
		ScriptText:     requiredString(raw, "script_text", c),
		Tone:           requiredString(raw, "tone", c),
		VisualStyle:    requiredString(raw, "visual_style", c),
		AspectRatio:    requiredString(raw, "aspect_ratio", c),
		MoodProfile:    optionalString(raw, "mood_profile", c),
		PlannerContext: optionalString(raw, "planner_context", c),
	}
	p.Controls = normalizeControls(raw, "visual_controls", c)
	if !c.failed() {
		// Enum membership is only meaningful once the primitives are right.
		runStructValidation(p, c)
	}
	return p
}

func normalizeLoopSequence(raw map[string]any, c *collector) *model.LoopSequencePayload {
	p := &model.LoopSequencePayload{
		VisionSeedText:        requiredString(raw, "vision_seed_text", c),
		StartFrameDescription: requiredString(raw, "start_frame_description", c),
		MoodProfile:           optionalString(raw, "mood_profile", c),
	}
	p.Controls = normalizeControls(raw, "visual_controls", c)

	if v, present := raw["loop_length"]; present && v != nil {
		// Only a finite positive number or null is accepted, never a coerced
		// string or boolean.
		f, ok := v.(float64)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			c.addf("loop_length", "must be a positive integer or null")
		} else if f <= 0 || f != math.Trunc(f) {
			c.addf("loop_length", "must be a positive integer")
		} else {
			n := int(f)
			p.LoopLength = &n
		}
	}
	return p
}
