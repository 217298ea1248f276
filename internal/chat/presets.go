package chat

// Preset is a canned prompt triggered by a button. Presets run through the
// same turn path as typed input.
type Preset struct {
	Name   string
	Prompt string
}

func Presets() []Preset {
	return []Preset{
		{Name: "Generate Summary", Prompt: "Please generate a concise summary of our entire discussion so far."},
		{Name: "Extract Key Points", Prompt: "Please extract and list the main key points from our discussion."},
		{Name: "Suggest Next Steps", Prompt: "Based on our discussion, what are the recommended next steps?"},
	}
}

// PresetByName looks a preset up by its button label.
func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
