package chat

// Fixed model-side acknowledgements used when seeding a session.
const (
	instructionsAck = "Understood. I will follow these instructions."
	referenceAck    = "Acknowledged PDF content."
)

// SeedMessage is one entry of the history a session is created with.
type SeedMessage struct {
	Role Role
	Text string
}

// ContextBundle is the immutable preamble seeded into a model session before
// any user-visible turn: system instructions plus, in inline-text mode, the
// extracted reference-document text. A bundle must not change under a live
// session; the session manager invalidates the handle instead.
type ContextBundle struct {
	SystemInstructions string
	ReferenceText      string
}

// SeedMessages renders the bundle as the ordered seed history. Pure.
//
// The instruction pair is always present, even with empty instructions, so a
// degraded bundle still yields a usable session. The reference pair is
// appended only when reference text is present.
func (b ContextBundle) SeedMessages() []SeedMessage {
	seed := []SeedMessage{
		{Role: RoleUser, Text: "System: " + b.SystemInstructions},
		{Role: RoleAssistant, Text: instructionsAck},
	}
	if b.ReferenceText != "" {
		seed = append(seed,
			SeedMessage{Role: RoleUser, Text: "PDF content for reference:\n\n" + b.ReferenceText},
			SeedMessage{Role: RoleAssistant, Text: referenceAck},
		)
	}
	return seed
}
