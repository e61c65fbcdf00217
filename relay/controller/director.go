package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prismstudio/director-core/common/config"
	"github.com/prismstudio/director-core/common/logger"
	"github.com/prismstudio/director-core/relay/adaptor"
	"github.com/prismstudio/director-core/relay/channel"
	"github.com/prismstudio/director-core/relay/conversation"
	"github.com/prismstudio/director-core/relay/credential"
	"github.com/prismstudio/director-core/relay/model"
	"github.com/prismstudio/director-core/relay/prompt"
	"github.com/prismstudio/director-core/relay/validator"
)

// Direct runs one director request end to end: validate, resolve a credential,
// dispatch to the mode's workflow, normalize. The HTTP layer stays a thin shell
// around this so the pipeline is testable without gin.
func Direct(ctx context.Context, header http.Header, body []byte, requestId string) (*model.DirectorResult, *model.ErrorWithStatusCode) {
	envelope, errResp := validator.Normalize(body)
	if errResp != nil {
		return nil, errResp
	}
	provider := envelope.Provider(config.PlanProvider)

	// Non-seed image stages carry no model selector of their own: the
	// provider travels inside the conversation token, so the token has to be
	// opened before a credential can be resolved.
	var convo *conversation.Context
	if envelope.Mode == model.ModeImagePrompt {
		p := envelope.ImagePrompt
		if p.Stage != "" && p.Stage != model.StageSeed {
			var err error
			convo, err = conversation.DecodeToken(p.ConversationToken, config.SessionSecret)
			if err != nil {
				return nil, model.NewValidationErrorf("conversation_token", "conversation token is invalid or expired")
			}
			provider = convo.Model
		}
	}

	// The raw body is re-read loosely for the credential fallback fields,
	// which live outside the typed envelope.
	var rawBody map[string]any
	_ = json.Unmarshal(body, &rawBody)

	resolved, errResp := credential.Resolve(header, rawBody, provider, config.Policy)
	if errResp != nil {
		return nil, errResp
	}
	logger.Infof(ctx, "resolved %s", resolved.String())

	a := GetAdaptor(provider)
	if a == nil {
		return nil, model.NewValidationErrorf("model", "unsupported provider %s", provider)
	}
	meta := &channel.Meta{
		Provider:  provider,
		APIKey:    resolved.Key,
		BaseURL:   config.ProviderBaseURL(provider),
		RequestId: requestId,
	}

	var result *model.DirectorResult
	switch envelope.Mode {
	case model.ModeImagePrompt:
		result, errResp = directImagePrompt(ctx, a, meta, envelope, convo)
	case model.ModeVideoPlan, model.ModeLoopSequence:
		result, errResp = directPlan(ctx, a, meta, envelope)
	default:
		return nil, model.NewValidationErrorf("mode", "unsupported mode %s", envelope.Mode)
	}
	if errResp != nil {
		return nil, errResp
	}

	result.Provider = provider
	result.Media = adaptor.OffloadInlineMedia(ctx, result.Media)
	return result, nil
}

// directImagePrompt drives the conversational stage machine. The context lives
// entirely inside the signed conversation token; nothing is held server-side
// between stages. convo is non-nil for every stage after seed, already decoded
// by the caller.
func directImagePrompt(ctx context.Context, a channel.Adaptor, meta *channel.Meta, envelope *model.RequestEnvelope, convo *conversation.Context) (*model.DirectorResult, *model.ErrorWithStatusCode) {
	p := envelope.ImagePrompt
	stage := p.Stage
	if stage == "" {
		stage = model.StageSeed
	}

	machine := &conversation.Machine{
		Provider: meta.Provider,
		Call: func(callCtx context.Context, system string, user string) (string, *model.ErrorWithStatusCode) {
			_, text, errResp := channel.CallText(callCtx, a, meta, system, user, envelope.Images)
			return text, errResp
		},
	}

	var errResp *model.ErrorWithStatusCode
	if stage == model.StageSeed {
		convo, errResp = machine.Seed(ctx, p)
		if errResp != nil {
			return nil, errResp
		}
	} else {
		switch stage {
		case model.StageConfirm:
			confirmed := p.Confirmed != nil && *p.Confirmed
			errResp = machine.Confirm(ctx, convo, confirmed, p.Feedback)
		case model.StageRefine:
			errResp = machine.Refine(ctx, convo, p.RefinementCommands, p.MoodMemory)
		default:
			return nil, model.NewValidationErrorf("stage", "unsupported stage %s", stage)
		}
		if errResp != nil {
			return nil, errResp
		}
	}

	token, err := conversation.EncodeToken(convo, config.SessionSecret, config.ConversationTokenTTL)
	if err != nil {
		return nil, model.NewProviderError(meta.Provider, http.StatusInternalServerError, "failed to issue conversation token")
	}

	gen := &model.GenerationResult{
		Summary:           convo.Summary,
		MoodMemory:        convo.MoodMemory,
		Stage:             convo.Stage,
		ConversationToken: token,
	}
	if convo.Stage == model.StageGenerate {
		gen.PromptText = convo.PositivePrompt
		gen.NegativePrompt = convo.NegativePrompt
		gen.Settings = convo.Settings
	}
	return &model.DirectorResult{
		Success: true,
		Mode:    model.ModeImagePrompt,
		Result:  gen,
	}, nil
}

// directPlan runs the single-call plan modes and hands the reply to the
// normalizer chain. Unusable plan output degrades rather than fails.
func directPlan(ctx context.Context, a channel.Adaptor, meta *channel.Meta, envelope *model.RequestEnvelope) (*model.DirectorResult, *model.ErrorWithStatusCode) {
	var system, user string
	switch envelope.Mode {
	case model.ModeVideoPlan:
		system, user = prompt.BuildVideoPlanInstruction(envelope.VideoPlan)
	case model.ModeLoopSequence:
		system, user = prompt.BuildLoopInstruction(envelope.LoopSequence)
	}

	raw, text, errResp := channel.CallText(ctx, a, meta, system, user, envelope.Images)
	if errResp != nil {
		return nil, errResp
	}
	result := adaptor.NormalizeSuccess(envelope.Mode, raw, text)
	if result.Result == nil {
		logger.Warnf(ctx, "%s reply did not normalize, serving fallback text", envelope.Mode)
	}
	return result, nil
}
