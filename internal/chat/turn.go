package chat

// Role tags one side of the conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged message in the transcript. Immutable once appended.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
	Seq  int    `json:"seq"`
}

// Transcript is the append-only ordered sequence of turns. It is the single
// source of truth for display and for replay after a failed send. The only
// removal operation is RemoveLastUser, used to roll back a failed turn.
type Transcript struct {
	turns []Turn
	next  int
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append records a new turn and returns it with its sequence index assigned.
func (t *Transcript) Append(role Role, text string) Turn {
	turn := Turn{Role: role, Text: text, Seq: t.next}
	t.turns = append(t.turns, turn)
	t.next++
	return turn
}

// RemoveLastUser removes the most recent turn if and only if it is a USER
// turn. Reports whether a turn was removed.
func (t *Transcript) RemoveLastUser() bool {
	n := len(t.turns)
	if n == 0 || t.turns[n-1].Role != RoleUser {
		return false
	}
	t.turns = t.turns[:n-1]
	t.next--
	return true
}

// Turns returns a copy of the transcript in order.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

func (t *Transcript) Len() int { return len(t.turns) }

// Last returns the most recent turn, if any.
func (t *Transcript) Last() (Turn, bool) {
	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}

// Reset drops all turns. Only an explicit clear goes through here.
func (t *Transcript) Reset() {
	t.turns = nil
	t.next = 0
}
