package chat

import (
	"context"
	"fmt"
)

// turnState tracks where the processor is inside one turn cycle.
type turnState int

const (
	stateIdle turnState = iota
	stateUserTurnRecorded
	stateSessionReady
	stateResponsePending
	stateCommitted
	stateRolledBack
)

func (s turnState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateUserTurnRecorded:
		return "user_turn_recorded"
	case stateSessionReady:
		return "session_ready"
	case stateResponsePending:
		return "response_pending"
	case stateCommitted:
		return "committed"
	case stateRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Processor runs one pending input through a full turn cycle: record the
// user turn, ensure a live session, compose and send the outbound message,
// then commit the assistant turn or roll the user turn back. At most one
// cycle is in flight; callers serialize.
type Processor struct {
	sessionID  string
	transcript *Transcript
	manager    *SessionManager
	docs       *DocumentSet
	searcher   Searcher
	saver      SnapshotSaver
	debug      *DebugLog
	state      turnState
}

func NewProcessor(sessionID string, transcript *Transcript, manager *SessionManager, docs *DocumentSet, searcher Searcher, saver SnapshotSaver, debug *DebugLog) *Processor {
	return &Processor{
		sessionID:  sessionID,
		transcript: transcript,
		manager:    manager,
		docs:       docs,
		searcher:   searcher,
		saver:      saver,
		debug:      debug,
		state:      stateIdle,
	}
}

// Busy reports whether a turn cycle is currently between recording the user
// turn and committing or rolling it back.
func (p *Processor) Busy() bool {
	return p.state != stateIdle && p.state != stateCommitted && p.state != stateRolledBack
}

func (p *Processor) setState(s turnState) {
	p.state = s
}

// composeFn builds the outbound message parts once the session is ready.
// It may call external collaborators; an error rolls the turn back.
type composeFn func(ctx context.Context) ([]MessagePart, error)

// ProcessText handles free-typed input. Input starting with a search
// directive is routed through the search collaborator first.
func (p *Processor) ProcessText(ctx context.Context, text string) (Turn, error) {
	if query, ok := parseSearchDirective(text); ok && p.searcher != nil {
		return p.process(ctx, text, func(ctx context.Context) ([]MessagePart, error) {
			if query == "" {
				return nil, NewPreconditionError(ErrEmptySearchQuery)
			}
			results, err := p.searcher.Search(ctx, query)
			if err != nil {
				return nil, NewTransportError(err)
			}
			return []MessagePart{TextPart(searchSummaryPrompt(query, results))}, nil
		})
	}
	return p.process(ctx, text, func(context.Context) ([]MessagePart, error) {
		return []MessagePart{TextPart(text)}, nil
	})
}

// ProcessForm handles a structured form submission. The submission is
// rejected before any turn is created when no reference document is attached
// or any field is still at the placeholder.
func (p *Processor) ProcessForm(ctx context.Context, sub FormSubmission) (Turn, error) {
	if !p.docs.Attached() {
		return Turn{}, NewPreconditionError(ErrNoDocument)
	}
	if err := sub.Validate(); err != nil {
		return Turn{}, NewPreconditionError(err)
	}
	digest := sub.Digest()
	return p.process(ctx, digest, func(context.Context) ([]MessagePart, error) {
		parts := make([]MessagePart, 0, 3)
		if p.docs.Mode() == AttachUpload {
			// One send carries the grids and the digest together.
			for _, ref := range p.docs.Refs() {
				parts = append(parts, DocumentPart(ref))
			}
		}
		return append(parts, TextPart(digest)), nil
	})
}

// ProcessPreset runs a canned prompt through the ordinary turn path.
func (p *Processor) ProcessPreset(ctx context.Context, preset Preset) (Turn, error) {
	return p.process(ctx, preset.Prompt, func(context.Context) ([]MessagePart, error) {
		return []MessagePart{TextPart(preset.Prompt)}, nil
	})
}

// process is the turn state machine. On any failure past recording the user
// turn, the turn is removed again, leaving the transcript exactly as it was
// before the attempt. No partial assistant turn is ever committed and no
// failed send is retried.
func (p *Processor) process(ctx context.Context, visible string, compose composeFn) (Turn, error) {
	p.transcript.Append(RoleUser, visible)
	p.setState(stateUserTurnRecorded)

	handle, err := p.manager.EnsureSession(ctx)
	if err != nil {
		return Turn{}, p.rollback(err)
	}
	p.setState(stateSessionReady)

	parts, err := compose(ctx)
	if err != nil {
		return Turn{}, p.rollback(err)
	}
	p.setState(stateResponsePending)

	reply, err := handle.Send(ctx, parts)
	if err != nil {
		p.debug.Append("error: %v", err)
		return Turn{}, p.rollback(NewTransportError(err))
	}

	turn := p.transcript.Append(RoleAssistant, reply)
	p.setState(stateCommitted)
	p.debug.Append("assistant response generated")
	p.saveSnapshot(ctx)
	return turn, nil
}

func (p *Processor) rollback(cause error) error {
	if !p.transcript.RemoveLastUser() {
		// The user turn is always last when a cycle fails; anything else
		// means the transcript was mutated mid-cycle.
		p.debug.Append("rollback found no user turn to remove")
	}
	p.setState(stateRolledBack)
	return cause
}

// saveSnapshot persists the committed transcript. Fire-and-forget: a failed
// save is a debug note, never a user-visible error.
func (p *Processor) saveSnapshot(ctx context.Context) {
	if p.saver == nil {
		return
	}
	if err := p.saver.Save(ctx, p.sessionID, p.transcript.Turns()); err != nil {
		p.debug.Append("snapshot save failed: %v", err)
	}
}

// searchSummaryPrompt wraps raw search results in the summarization request
// sent to the model.
func searchSummaryPrompt(query, results string) string {
	return fmt.Sprintf("Here are web search results for: '%s'\n\n%s\n\n"+
		"Please provide a clear, accurate summary of these results in a well-formatted response. "+
		"Include relevant links when available. Verify accuracy before responding.", query, results)
}
