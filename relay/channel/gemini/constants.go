package gemini

const DefaultBaseURL = "https://generativelanguage.googleapis.com"
const DefaultModel = "gemini-2.0-flash"

var ModelList = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-2.5-flash",
	"gemini-2.5-pro",
}
