package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/tester"
)

// fakes that count creates, seeds and sends
type fakeHandle struct {
	reply string
	err   error
	sends [][]MessagePart
}

func (f *fakeHandle) Send(_ context.Context, parts []MessagePart) (string, error) {
	f.sends = append(f.sends, parts)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeTransport struct {
	creates   int
	seeds     [][]SeedMessage
	configs   []ModelConfig
	createErr error
	handle    *fakeHandle
}

func (f *fakeTransport) StartChat(_ context.Context, cfg ModelConfig, seed []SeedMessage) (SessionHandle, error) {
	f.creates++
	f.configs = append(f.configs, cfg)
	f.seeds = append(f.seeds, seed)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.handle == nil {
		f.handle = &fakeHandle{reply: "ok"}
	}
	return f.handle, nil
}

func newManager(transport Transport, docs *DocumentSet) *SessionManager {
	return NewSessionManager(transport, "Be concise.", docs, ModelConfig{Model: "gemini-2.0-flash", Temperature: 0.5}, NewDebugLog())
}

func TestEnsureSessionSeedsOnce(t *testing.T) {
	transport := &fakeTransport{}
	m := newManager(transport, NewDocumentSet(AttachUpload))

	first, err := m.EnsureSession(context.Background())
	tester.NoErr(t, err)
	second, err := m.EnsureSession(context.Background())
	tester.NoErr(t, err)

	tester.Eq(t, transport.creates, 1)
	tester.True(t, first == second, "handle must be reused across turns")
	tester.Eq(t, len(transport.seeds[0]), 2)
	tester.Eq(t, transport.seeds[0][0].Text, "System: Be concise.")
}

func TestEnsureSessionFailureLeavesHandleAbsent(t *testing.T) {
	transport := &fakeTransport{createErr: errors.New("boom")}
	m := newManager(transport, NewDocumentSet(AttachUpload))

	_, err := m.EnsureSession(context.Background())
	tester.Err(t, err)
	var initErr *SessionInitError
	tester.True(t, errors.As(err, &initErr))
	tester.False(t, m.Live())

	// Next attempt retries creation from scratch.
	transport.createErr = nil
	_, err = m.EnsureSession(context.Background())
	tester.NoErr(t, err)
	tester.Eq(t, transport.creates, 2)
}

func TestModelChangeForcesFreshCreateAndSeed(t *testing.T) {
	transport := &fakeTransport{}
	m := newManager(transport, NewDocumentSet(AttachUpload))

	_, err := m.EnsureSession(context.Background())
	tester.NoErr(t, err)
	tester.True(t, m.SetModel("gemini-2.0-pro-exp-02-05"))
	tester.False(t, m.Live())

	_, err = m.EnsureSession(context.Background())
	tester.NoErr(t, err)
	tester.Eq(t, transport.creates, 2)
	tester.Eq(t, transport.configs[1].Model, "gemini-2.0-pro-exp-02-05")
}

func TestSetModelSameNameKeepsHandle(t *testing.T) {
	transport := &fakeTransport{}
	m := newManager(transport, NewDocumentSet(AttachUpload))
	_, _ = m.EnsureSession(context.Background())
	tester.False(t, m.SetModel("gemini-2.0-flash"))
	tester.True(t, m.Live())
}

func TestDocumentChangeForcesReseed(t *testing.T) {
	transport := &fakeTransport{}
	docs := NewDocumentSet(AttachSeed)
	m := newManager(transport, docs)

	_, err := m.EnsureSession(context.Background())
	tester.NoErr(t, err)

	// Attaching a grid after the session was seeded must not serve the
	// stale handle, even without an explicit Invalidate call.
	docs.AttachText(SlotTier2, "tier 2 grid text")
	_, err = m.EnsureSession(context.Background())
	tester.NoErr(t, err)

	tester.Eq(t, transport.creates, 2)
	tester.Eq(t, len(transport.seeds[1]), 4, "fresh seed must carry the reference pair")
	tester.Eq(t, transport.seeds[1][2].Text, "PDF content for reference:\n\ntier 2 grid text")
}

func TestTemperatureChangeInvalidates(t *testing.T) {
	transport := &fakeTransport{}
	m := newManager(transport, NewDocumentSet(AttachUpload))
	_, _ = m.EnsureSession(context.Background())

	tester.NoErr(t, m.SetTemperature(0.9))
	tester.False(t, m.Live())
	tester.Err(t, m.SetTemperature(1.5))
}

func TestSessionResetDropsEverything(t *testing.T) {
	transport := &fakeTransport{handle: &fakeHandle{reply: "Hi there!"}}
	s := NewSession(SessionOptions{
		Transport:    transport,
		Instructions: "Be concise.",
		Config:       ModelConfig{Model: "gemini-2.0-flash", Temperature: 0.5},
		AttachMode:   AttachUpload,
	})
	_, err := s.Processor.ProcessText(context.Background(), "Hello")
	tester.NoErr(t, err)
	s.Docs.AttachRef(SlotTier2, DocumentRef{ID: "f1", URI: "files/f1"})

	s.Reset()
	tester.Eq(t, s.Transcript.Len(), 0)
	tester.False(t, s.Docs.Attached())
	tester.False(t, s.Manager.Live())
	tester.Eq(t, len(s.Debug.Notes()), 0)
}

func TestSessionSetModelClearsTranscript(t *testing.T) {
	transport := &fakeTransport{handle: &fakeHandle{reply: "Hi there!"}}
	s := NewSession(SessionOptions{
		Transport:    transport,
		Instructions: "Be concise.",
		Config:       ModelConfig{Model: "gemini-2.0-flash", Temperature: 0.5},
		AttachMode:   AttachUpload,
	})
	_, err := s.Processor.ProcessText(context.Background(), "Hello")
	tester.NoErr(t, err)
	tester.Eq(t, s.Transcript.Len(), 2)

	s.SetModel("gemini-2.0-pro-exp-02-05")
	tester.Eq(t, s.Transcript.Len(), 0)
	tester.False(t, s.Manager.Live())
}
