package model

// DirectorResult is the single normalized output contract for all three modes.
type DirectorResult struct {
	Success      bool              `json:"success"`
	Mode         Mode              `json:"mode"`
	Result       *GenerationResult `json:"result,omitempty"`
	Text         string            `json:"text,omitempty"`
	FallbackText string            `json:"fallbackText,omitempty"`
	Media        []MediaAsset      `json:"media,omitempty"`

	// Failure fields.
	Error      string `json:"error,omitempty"`
	Provider   string `json:"provider,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	Details    any    `json:"details,omitempty"`
}

// GenerationResult carries the mode-specific structured payload.
type GenerationResult struct {
	// image_prompt
	PromptText     string            `json:"promptText,omitempty"`
	NegativePrompt string            `json:"negativePrompt,omitempty"`
	Settings       map[string]string `json:"settings,omitempty"`
	Summary        string            `json:"summary,omitempty"`
	MoodMemory     string            `json:"moodMemory,omitempty"`

	// conversation carry-over
	Stage             string `json:"stage,omitempty"`
	ConversationToken string `json:"conversationToken,omitempty"`

	// video_plan / loop_sequence
	ScenePlan *ScenePlan `json:"scenePlan,omitempty"`
	LoopPlan  *LoopPlan  `json:"loopPlan,omitempty"`
}

// ScenePlan is a storyboard extracted from a provider reply. Scene entries are
// kept loosely typed: providers disagree on per-scene fields and the contract
// only guarantees an array-typed scenes list.
type ScenePlan struct {
	Title       string           `json:"title,omitempty"`
	Scenes      []map[string]any `json:"scenes"`
	EnergyCurve []string         `json:"energy_curve,omitempty"`
}

// LoopPlan is a seamless-loop plan: an ordered cycle list.
type LoopPlan struct {
	Cycles []Cycle `json:"cycles"`
}

// Cycle is one unit of a loop sequence. A cycle without a complete continuity
// lock or without acceptance checks is not considered valid.
type Cycle struct {
	Order            int             `json:"order"`
	Description      string          `json:"description,omitempty"`
	FrameSpan        string          `json:"frame_span,omitempty"`
	ContinuityLock   *ContinuityLock `json:"continuity_lock"`
	AcceptanceChecks []string        `json:"acceptance_checks"`
}

// ContinuityLock is the fixed four-field record downstream cycles must preserve.
type ContinuityLock struct {
	SubjectIdentity  string `json:"subject_identity"`
	LightingPalette  string `json:"lighting_palette"`
	CameraGrammar    string `json:"camera_grammar"`
	EnvironmentMotif string `json:"environment_motif"`
}

// Complete reports whether all four lock fields are populated.
func (l *ContinuityLock) Complete() bool {
	if l == nil {
		return false
	}
	return l.SubjectIdentity != "" && l.LightingPalette != "" &&
		l.CameraGrammar != "" && l.EnvironmentMotif != ""
}
