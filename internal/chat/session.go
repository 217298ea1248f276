package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SessionManager owns the single live model conversation. The handle is nil
// until the first send, is seeded exactly once per lifetime with the current
// context bundle, and is dropped whenever the model, the temperature or the
// document set changes. A handle seeded with stale reference context must
// never be served.
type SessionManager struct {
	transport    Transport
	instructions string
	docs         *DocumentSet
	cfg          ModelConfig
	debug        *DebugLog

	handle      SessionHandle
	seededEpoch int
}

func NewSessionManager(transport Transport, instructions string, docs *DocumentSet, cfg ModelConfig, debug *DebugLog) *SessionManager {
	return &SessionManager{
		transport:    transport,
		instructions: instructions,
		docs:         docs,
		cfg:          cfg,
		debug:        debug,
	}
}

// Bundle builds the context bundle for the current configuration.
func (m *SessionManager) Bundle() ContextBundle {
	return ContextBundle{
		SystemInstructions: m.instructions,
		ReferenceText:      m.docs.ReferenceText(),
	}
}

// EnsureSession returns the live handle, creating and seeding one if none
// exists. A live handle whose seed predates the current document set is
// treated as absent. On failure no handle is cached; the next call retries
// creation from scratch.
func (m *SessionManager) EnsureSession(ctx context.Context) (SessionHandle, error) {
	if m.handle != nil && m.seededEpoch == m.docs.Epoch() {
		return m.handle, nil
	}
	m.handle = nil

	handle, err := m.transport.StartChat(ctx, m.cfg, m.Bundle().SeedMessages())
	if err != nil {
		m.debug.Append("chat initialization error: %v", err)
		return nil, NewSessionInitError(err)
	}
	m.handle = handle
	m.seededEpoch = m.docs.Epoch()
	m.debug.Append("chat session initialized (model=%s)", m.cfg.Model)
	return handle, nil
}

// Invalidate drops the live handle so the next send reseeds fresh context.
func (m *SessionManager) Invalidate() {
	m.handle = nil
}

// Live reports whether a seeded handle is currently held.
func (m *SessionManager) Live() bool { return m.handle != nil }

func (m *SessionManager) Config() ModelConfig { return m.cfg }

// SetModel switches the model and invalidates the handle. Reports whether
// the name actually changed.
func (m *SessionManager) SetModel(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == m.cfg.Model {
		return false
	}
	m.cfg.Model = name
	m.Invalidate()
	return true
}

// SetTemperature adjusts sampling temperature and invalidates the handle.
func (m *SessionManager) SetTemperature(t float32) error {
	if t < 0 || t > 1 {
		return NewConfigurationError(fmt.Errorf("temperature %v out of range [0,1]", t))
	}
	if t == m.cfg.Temperature {
		return nil
	}
	m.cfg.Temperature = t
	m.Invalidate()
	return nil
}

// Session bundles the mutable state of one interactive conversation: the
// transcript, the attached documents, the debug log, the session manager and
// the turn processor. It replaces the original's ambient bag of globals with
// one explicitly owned value.
type Session struct {
	ID         string
	Transcript *Transcript
	Docs       *DocumentSet
	Debug      *DebugLog
	Manager    *SessionManager
	Processor  *Processor
}

// SessionOptions configures a new Session.
type SessionOptions struct {
	Transport    Transport
	Searcher     Searcher // nil disables search directives
	Saver        SnapshotSaver
	Instructions string
	Config       ModelConfig
	AttachMode   AttachMode
}

func NewSession(opts SessionOptions) *Session {
	debug := NewDebugLog()
	transcript := NewTranscript()
	docs := NewDocumentSet(opts.AttachMode)
	manager := NewSessionManager(opts.Transport, opts.Instructions, docs, opts.Config, debug)
	s := &Session{
		ID:         uuid.NewString(),
		Transcript: transcript,
		Docs:       docs,
		Debug:      debug,
		Manager:    manager,
	}
	s.Processor = NewProcessor(s.ID, transcript, manager, docs, opts.Searcher, opts.Saver, debug)
	return s
}

// SetModel switches models. Matching the original front-end, a model change
// also clears the visible transcript, not just the model-side session.
func (s *Session) SetModel(name string) {
	if s.Manager.SetModel(name) {
		s.Transcript.Reset()
		s.Debug.Append("model changed to %s; transcript cleared", name)
	}
}

// Reset clears the transcript, the debug log, the attached documents and the
// live handle. The session keeps its identity and configuration.
func (s *Session) Reset() {
	s.Transcript.Reset()
	s.Debug.Reset()
	s.Docs.Clear()
	s.Manager.Invalidate()
}
