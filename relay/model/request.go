package model

// Mode selects which of the three generation workflows a request drives.
type Mode string

const (
	ModeImagePrompt  Mode = "image_prompt"
	ModeVideoPlan    Mode = "video_plan"
	ModeLoopSequence Mode = "loop_sequence"
)

// Conversation stages of the image-prompt flow.
const (
	StageSeed     = "seed"
	StageConfirm  = "confirm"
	StageRefine   = "refine"
	StageGenerate = "generate"
)

// Supported provider backends.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var SupportedProviders = []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic}

// ControlCategories are the seven recognized visual-control category keys.
// Unknown keys in a request are ignored, missing ones default to empty lists.
var ControlCategories = []string{
	"camera_angle",
	"lens",
	"lighting",
	"palette",
	"composition",
	"atmosphere",
	"motion",
}

var Tones = []string{"epic", "intimate", "playful", "somber", "suspenseful"}
var VisualStyles = []string{"cinematic", "documentary", "animated", "noir"}
var AspectRatios = []string{"16:9", "9:16"}

// RequestEnvelope is the typed form of an inbound request body. Exactly one of
// the payload pointers is set, matching Mode.
type RequestEnvelope struct {
	Mode         Mode                 `json:"mode"`
	Images       []InlineImage        `json:"images,omitempty"`
	ImagePrompt  *ImagePromptPayload  `json:"image_prompt,omitempty"`
	VideoPlan    *VideoPlanPayload    `json:"video_plan,omitempty"`
	LoopSequence *LoopSequencePayload `json:"loop_sequence,omitempty"`
}

// InlineImage is an inline reference image carried as a data URL.
type InlineImage struct {
	DataURL  string `json:"data_url"`
	MimeType string `json:"mime_type,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

// GlossaryEntry mirrors one selectable visual-control option. All four fields
// are required; a single malformed entry invalidates the whole request.
type GlossaryEntry struct {
	Id            string `json:"id"`
	Label         string `json:"label"`
	Tooltip       string `json:"tooltip"`
	PromptSnippet string `json:"promptSnippet"`
}

type ImagePromptPayload struct {
	VisionSeedText string                     `json:"vision_seed_text" validate:"required"`
	Model          string                     `json:"model" validate:"required,oneof=gemini openai anthropic"`
	Controls       map[string][]string        `json:"visual_controls"`
	Glossary       map[string][]GlossaryEntry `json:"glossary,omitempty"`
	MoodProfile    string                     `json:"mood_profile,omitempty"`
	Constraints    string                     `json:"constraints,omitempty"`

	// Stage machine inputs. Stage defaults to seed; the generate stage is
	// implicit after refine and cannot be requested directly.
	Stage              string   `json:"stage,omitempty" validate:"omitempty,oneof=seed confirm refine"`
	Confirmed          *bool    `json:"confirmed,omitempty"`
	Feedback           string   `json:"feedback,omitempty"`
	RefinementCommands []string `json:"refinement_commands,omitempty"`
	MoodMemory         string   `json:"mood_memory,omitempty"`
	ConversationToken  string   `json:"conversation_token,omitempty"`
}

type VideoPlanPayload struct {
	VisionSeedText string              `json:"vision_seed_text" validate:"required"`
	ScriptText     string              `json:"script_text" validate:"required"`
	Tone           string              `json:"tone" validate:"required,oneof=epic intimate playful somber suspenseful"`
	VisualStyle    string              `json:"visual_style" validate:"required,oneof=cinematic documentary animated noir"`
	AspectRatio    string              `json:"aspect_ratio" validate:"required,oneof=16:9 9:16"`
	MoodProfile    string              `json:"mood_profile,omitempty"`
	Controls       map[string][]string `json:"visual_controls"`
	PlannerContext string              `json:"planner_context,omitempty"`
}

type LoopSequencePayload struct {
	VisionSeedText        string              `json:"vision_seed_text" validate:"required"`
	StartFrameDescription string              `json:"start_frame_description" validate:"required"`
	// LoopLength is a positive frame count; nil lets the planner choose.
	LoopLength  *int                `json:"loop_length,omitempty"`
	MoodProfile string              `json:"mood_profile,omitempty"`
	Controls    map[string][]string `json:"visual_controls"`
}

// Provider returns the backend a validated envelope should be routed to.
// Only the image-prompt payload carries an explicit model selector; plan modes
// use the deployment default, passed in by the caller.
func (e *RequestEnvelope) Provider(planDefault string) string {
	if e.Mode == ModeImagePrompt && e.ImagePrompt != nil {
		return e.ImagePrompt.Model
	}
	return planDefault
}
