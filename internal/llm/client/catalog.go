package llmclient

// The enumerated model set the front-end may bind a session to. Different
// models carry different request rate limits on the Gemini side.
const (
	ModelFlash  = "gemini-2.0-flash"
	ModelProExp = "gemini-2.0-pro-exp-02-05"
)

// DefaultModel is the flash model; it typically has the higher rate limits.
const DefaultModel = ModelFlash

func Models() []string {
	return []string{ModelFlash, ModelProExp}
}

func KnownModel(name string) bool {
	for _, m := range Models() {
		if m == name {
			return true
		}
	}
	return false
}
