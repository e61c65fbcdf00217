package config

import (
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prismstudio/director-core/common/env"
)

var SystemName = "Director Core"
var ServiceName = env.String("SERVICE_NAME", "director-core")
var InstanceId = uuid.New().String()[:8]

var DebugEnabled = strings.ToLower(os.Getenv("DEBUG")) == "true"

// SessionSecret signs the conversation token. A random secret means tokens do
// not survive a restart, which matches the session-scoped TTL of the context.
var SessionSecret = env.String("SESSION_SECRET", uuid.New().String())

// ConversationTokenTTL bounds how long an issued conversation token stays valid.
var ConversationTokenTTL = time.Duration(env.Int("CONVERSATION_TOKEN_TTL_MINUTES", 24*60)) * time.Minute

// PlanProvider is the backend used for video_plan and loop_sequence requests,
// which carry no per-request model selector.
var PlanProvider = env.String("PLAN_PROVIDER", "gemini")

var EntitlementCacheTTL = time.Duration(env.Int("ENTITLEMENT_CACHE_TTL_SECONDS", 600)) * time.Second

// Per-provider base URL overrides, for proxies and self-hosted gateways.
// Empty means the adaptor's default endpoint.
var ProviderBaseURLs = map[string]string{
	"gemini":    os.Getenv("GEMINI_BASE_URL"),
	"openai":    os.Getenv("OPENAI_BASE_URL"),
	"anthropic": os.Getenv("ANTHROPIC_BASE_URL"),
}

func ProviderBaseURL(provider string) string {
	return ProviderBaseURLs[provider]
}

var GeminiVersion = env.String("GEMINI_VERSION", "v1beta")
var GeminiSafetySetting = env.String("GEMINI_SAFETY_SETTING", "BLOCK_NONE")

var RedisConnString = os.Getenv("REDIS_CONN_STRING")

// Cloudflare R2 (S3-compatible) media offload. Disabled unless the bucket and
// both keys are set.
var R2BucketName = os.Getenv("R2_BUCKET_NAME")
var R2AccessKey = os.Getenv("R2_ACCESS_KEY")
var R2SecretKey = os.Getenv("R2_SECRET_KEY")
var R2Endpoint = os.Getenv("R2_ENDPOINT")
var R2PublicBaseURL = os.Getenv("R2_PUBLIC_BASE_URL")

var RequestLogEnabled = env.Bool("REQUEST_LOG_ENABLED", true)

// ProviderEnvKeys maps each supported backend to the environment variable that
// can self-credential the deployment for it. Referenced verbatim in
// missing-credential errors so operators know what to set.
var ProviderEnvKeys = map[string]string{
	"gemini":    "GEMINI_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// ServerPolicy captures, once at startup, whether this deployment carries its
// own provider credentials. Passed into the credential resolver instead of
// having call sites read the environment ad hoc.
type ServerPolicy struct {
	// ServerKeys holds provider -> API key for every env var that was set.
	ServerKeys map[string]string
}

// SelfCredentialed reports whether the deployment can serve the given provider
// without a client-supplied key.
func (p *ServerPolicy) SelfCredentialed(provider string) bool {
	if p == nil {
		return false
	}
	return strings.TrimSpace(p.ServerKeys[provider]) != ""
}

func (p *ServerPolicy) ServerKey(provider string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.ServerKeys[provider])
}

// BuildServerPolicy reads the provider env vars exactly once.
func BuildServerPolicy() *ServerPolicy {
	policy := &ServerPolicy{ServerKeys: make(map[string]string)}
	for provider, envKey := range ProviderEnvKeys {
		if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
			policy.ServerKeys[provider] = v
		}
	}
	return policy
}

// Policy is the process-wide ServerPolicy, assigned in main before the router
// starts serving.
var Policy = &ServerPolicy{ServerKeys: map[string]string{}}
