package anthropic

const DefaultBaseURL = "https://api.anthropic.com"
const DefaultModel = "claude-3-5-sonnet-20241022"
const APIVersion = "2023-06-01"
const defaultMaxTokens = 4096

var ModelList = []string{
	"claude-3-5-sonnet-20241022",
	"claude-3-5-haiku-20241022",
	"claude-3-7-sonnet-20250219",
}
