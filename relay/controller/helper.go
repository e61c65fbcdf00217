package controller

import (
	"github.com/prismstudio/director-core/relay/channel"
	"github.com/prismstudio/director-core/relay/channel/anthropic"
	"github.com/prismstudio/director-core/relay/channel/gemini"
	"github.com/prismstudio/director-core/relay/channel/openai"
	"github.com/prismstudio/director-core/relay/model"
)

// GetAdaptor returns a fresh adaptor for the provider, nil when unsupported.
func GetAdaptor(provider string) channel.Adaptor {
	switch provider {
	case model.ProviderGemini:
		return &gemini.Adaptor{}
	case model.ProviderOpenAI:
		return &openai.Adaptor{}
	case model.ProviderAnthropic:
		return &anthropic.Adaptor{}
	}
	return nil
}
