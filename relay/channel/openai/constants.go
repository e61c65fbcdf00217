package openai

const DefaultBaseURL = "https://api.openai.com"
const DefaultModel = "gpt-4o"

var ModelList = []string{
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4.1",
	"gpt-4.1-mini",
}
