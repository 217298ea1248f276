package chat

import "context"

// PartKind distinguishes the members of the MessagePart variant.
type PartKind int

const (
	PartText PartKind = iota
	PartDocument
)

// MessagePart is one element of an outbound model message: either literal
// text or an opaque reference to a previously uploaded document. Exactly one
// of the two is meaningful for a given kind.
type MessagePart struct {
	Kind PartKind
	Text string
	Doc  DocumentRef
}

func TextPart(text string) MessagePart {
	return MessagePart{Kind: PartText, Text: text}
}

func DocumentPart(ref DocumentRef) MessagePart {
	return MessagePart{Kind: PartDocument, Doc: ref}
}

// DocumentRef identifies an uploaded reference document on the model side.
// The core treats it as opaque; only the transport interprets it.
type DocumentRef struct {
	ID       string
	URI      string
	MIMEType string
	Name     string
}

// ModelConfig carries the generation settings a session is created with.
// Sampling parameters beyond temperature are fixed by the transport.
type ModelConfig struct {
	Model       string
	Temperature float32
}

// Transport creates live model conversations. Implemented by the Gemini
// client; wrapped by middleware for logging.
type Transport interface {
	// StartChat creates a conversation bound to cfg and seeded with the
	// given history, in order. The returned handle carries its own
	// model-side history from then on.
	StartChat(ctx context.Context, cfg ModelConfig, seed []SeedMessage) (SessionHandle, error)
}

// SessionHandle is a live model conversation. Send blocks until the model
// replies or the call fails; there is no timeout beyond the context's.
type SessionHandle interface {
	Send(ctx context.Context, parts []MessagePart) (string, error)
}

// Searcher is the external web-search collaborator.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// SnapshotSaver persists transcript snapshots after committed turns.
// Fire-and-forget: failures are logged and never reach the user.
type SnapshotSaver interface {
	Save(ctx context.Context, sessionID string, turns []Turn) error
}
