package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/tester"
)

type fakeSearcher struct {
	result string
	err    error
	calls  []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) (string, error) {
	f.calls = append(f.calls, query)
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

type fakeSaver struct {
	saves int
	err   error
	last  []Turn
}

func (f *fakeSaver) Save(_ context.Context, _ string, turns []Turn) error {
	f.saves++
	f.last = turns
	return f.err
}

type fixture struct {
	session   *Session
	transport *fakeTransport
	searcher  *fakeSearcher
	saver     *fakeSaver
}

func newFixture(mode AttachMode, reply string) *fixture {
	transport := &fakeTransport{handle: &fakeHandle{reply: reply}}
	searcher := &fakeSearcher{result: "sunny, 25C"}
	saver := &fakeSaver{}
	session := NewSession(SessionOptions{
		Transport:    transport,
		Searcher:     searcher,
		Saver:        saver,
		Instructions: "Be concise.",
		Config:       ModelConfig{Model: "gemini-2.0-flash", Temperature: 0.5},
		AttachMode:   mode,
	})
	return &fixture{session: session, transport: transport, searcher: searcher, saver: saver}
}

func TestHelloTurnScenario(t *testing.T) {
	f := newFixture(AttachUpload, "Hi there!")

	turn, err := f.session.Processor.ProcessText(context.Background(), "Hello")
	tester.NoErr(t, err)
	tester.Eq(t, turn.Role, RoleAssistant)
	tester.Eq(t, turn.Text, "Hi there!")

	// Seed sent once: instructions pair only, no reference document.
	tester.Eq(t, f.transport.creates, 1)
	tester.Eq(t, f.transport.seeds[0], []SeedMessage{
		{Role: RoleUser, Text: "System: Be concise."},
		{Role: RoleAssistant, Text: "Understood. I will follow these instructions."},
	})

	// One plain-text send.
	tester.Eq(t, len(f.transport.handle.sends), 1)
	tester.Eq(t, f.transport.handle.sends[0], []MessagePart{TextPart("Hello")})

	tester.Eq(t, f.session.Transcript.Turns(), []Turn{
		{Role: RoleUser, Text: "Hello", Seq: 0},
		{Role: RoleAssistant, Text: "Hi there!", Seq: 1},
	})
}

func TestSendFailureRollsBackTranscript(t *testing.T) {
	f := newFixture(AttachUpload, "first reply")
	_, err := f.session.Processor.ProcessText(context.Background(), "Hello")
	tester.NoErr(t, err)
	before := f.session.Transcript.Turns()

	f.transport.handle.err = errors.New("429 quota exceeded")
	_, err = f.session.Processor.ProcessText(context.Background(), "again")
	tester.Err(t, err)
	var transportErr *TransportError
	tester.True(t, errors.As(err, &transportErr))

	// Byte-for-byte identical to the pre-turn state.
	tester.Eq(t, f.session.Transcript.Turns(), before)
	tester.False(t, f.session.Processor.Busy())
}

func TestSessionInitFailureRollsBack(t *testing.T) {
	f := newFixture(AttachUpload, "ok")
	f.transport.createErr = errors.New("no credentials")

	_, err := f.session.Processor.ProcessText(context.Background(), "Hello")
	tester.Err(t, err)
	var initErr *SessionInitError
	tester.True(t, errors.As(err, &initErr))
	tester.Eq(t, f.session.Transcript.Len(), 0)

	// Recovery: next turn recreates the session and commits.
	f.transport.createErr = nil
	_, err = f.session.Processor.ProcessText(context.Background(), "Hello")
	tester.NoErr(t, err)
	tester.Eq(t, f.session.Transcript.Len(), 2)
}

func TestFormRejectedWithoutDocument(t *testing.T) {
	f := newFixture(AttachUpload, "ok")

	_, err := f.session.Processor.ProcessForm(context.Background(), completeSubmission())
	tester.ErrIs(t, err, ErrNoDocument)
	var preErr *PreconditionError
	tester.True(t, errors.As(err, &preErr))

	// No turn created, no transport call made.
	tester.Eq(t, f.session.Transcript.Len(), 0)
	tester.Eq(t, f.transport.creates, 0)
}

func TestFormRejectedWithPlaceholderField(t *testing.T) {
	f := newFixture(AttachUpload, "ok")
	f.session.Docs.AttachRef(SlotTier2, DocumentRef{ID: "f1", URI: "files/f1", MIMEType: "application/pdf"})

	sub := completeSubmission()
	sub.Values["Days_missed"] = PlaceholderOption
	_, err := f.session.Processor.ProcessForm(context.Background(), sub)
	var preErr *PreconditionError
	tester.True(t, errors.As(err, &preErr))
	tester.Eq(t, f.session.Transcript.Len(), 0)
	tester.Eq(t, f.transport.creates, 0)
}

func TestFormSubmissionUploadMode(t *testing.T) {
	f := newFixture(AttachUpload, "Try check-in/check-out.")
	tier2 := DocumentRef{ID: "f1", URI: "files/f1", MIMEType: "application/pdf"}
	tier3 := DocumentRef{ID: "f2", URI: "files/f2", MIMEType: "application/pdf"}
	f.session.Docs.AttachRef(SlotTier2, tier2)
	f.session.Docs.AttachRef(SlotTier3, tier3)

	turn, err := f.session.Processor.ProcessForm(context.Background(), completeSubmission())
	tester.NoErr(t, err)
	tester.Eq(t, turn.Text, "Try check-in/check-out.")

	// Exactly one send carrying both grids and the digest, in order.
	tester.Eq(t, len(f.transport.handle.sends), 1)
	parts := f.transport.handle.sends[0]
	tester.Eq(t, len(parts), 3)
	tester.Eq(t, parts[0], DocumentPart(tier2))
	tester.Eq(t, parts[1], DocumentPart(tier3))
	tester.Eq(t, parts[2].Kind, PartText)
	tester.Eq(t, parts[2].Text, completeSubmission().Digest())

	// One user digest turn plus one assistant turn.
	tester.Eq(t, f.session.Transcript.Len(), 2)
	turns := f.session.Transcript.Turns()
	tester.Eq(t, turns[0].Text, completeSubmission().Digest())
}

func TestFormSubmissionSeedModeSendsNoDocumentParts(t *testing.T) {
	f := newFixture(AttachSeed, "ok")
	f.session.Docs.AttachText(SlotTier2, "tier 2 grid text")

	_, err := f.session.Processor.ProcessForm(context.Background(), completeSubmission())
	tester.NoErr(t, err)

	// Reference text travels in the seed, never alongside the message.
	tester.Eq(t, len(f.transport.seeds[0]), 4)
	parts := f.transport.handle.sends[0]
	tester.Eq(t, len(parts), 1)
	tester.Eq(t, parts[0].Kind, PartText)
}

func TestSearchDirectiveEmptyQuery(t *testing.T) {
	f := newFixture(AttachUpload, "ok")

	_, err := f.session.Processor.ProcessText(context.Background(), "search   ")
	tester.ErrIs(t, err, ErrEmptySearchQuery)
	var preErr *PreconditionError
	tester.True(t, errors.As(err, &preErr))

	// User turn removed again; nothing reached the transport's send.
	tester.Eq(t, f.session.Transcript.Len(), 0)
	tester.Eq(t, len(f.searcher.calls), 0)
	tester.Eq(t, len(f.transport.handle.sends), 0)
}

func TestSearchDirectiveSummarizesResults(t *testing.T) {
	f := newFixture(AttachUpload, "It will be sunny.")

	turn, err := f.session.Processor.ProcessText(context.Background(), "search weather today")
	tester.NoErr(t, err)
	tester.Eq(t, turn.Text, "It will be sunny.")
	tester.Eq(t, f.searcher.calls, []string{"weather today"})

	parts := f.transport.handle.sends[0]
	tester.Eq(t, len(parts), 1)
	tester.Eq(t, parts[0].Text, searchSummaryPrompt("weather today", "sunny, 25C"))

	// The visible user turn keeps the literal input, not the wrapped prompt.
	turns := f.session.Transcript.Turns()
	tester.Eq(t, turns[0].Text, "search weather today")
}

func TestSearchFailureRollsBack(t *testing.T) {
	f := newFixture(AttachUpload, "ok")
	f.searcher.err = errors.New("perplexity unavailable")

	_, err := f.session.Processor.ProcessText(context.Background(), "search weather today")
	var transportErr *TransportError
	tester.True(t, errors.As(err, &transportErr))
	tester.Eq(t, f.session.Transcript.Len(), 0)
	tester.Eq(t, len(f.transport.handle.sends), 0)
}

func TestSearchWithoutSearcherGoesToModel(t *testing.T) {
	transport := &fakeTransport{handle: &fakeHandle{reply: "ok"}}
	s := NewSession(SessionOptions{
		Transport:    transport,
		Instructions: "Be concise.",
		Config:       ModelConfig{Model: "gemini-2.0-flash", Temperature: 0.5},
		AttachMode:   AttachUpload,
	})
	_, err := s.Processor.ProcessText(context.Background(), "search weather today")
	tester.NoErr(t, err)
	tester.Eq(t, transport.handle.sends[0], []MessagePart{TextPart("search weather today")})
}

func TestPresetRunsNormalTurnPath(t *testing.T) {
	f := newFixture(AttachUpload, "Summary: ...")
	preset, ok := PresetByName("Generate Summary")
	tester.True(t, ok)

	turn, err := f.session.Processor.ProcessPreset(context.Background(), preset)
	tester.NoErr(t, err)
	tester.Eq(t, turn.Text, "Summary: ...")
	turns := f.session.Transcript.Turns()
	tester.Eq(t, turns[0].Text, preset.Prompt)
}

func TestRepeatedInputAppendsNewTurns(t *testing.T) {
	f := newFixture(AttachUpload, "Hi there!")
	_, _ = f.session.Processor.ProcessText(context.Background(), "Hello")
	_, _ = f.session.Processor.ProcessText(context.Background(), "Hello")

	// No deduplication: two full turn pairs, one seed.
	tester.Eq(t, f.session.Transcript.Len(), 4)
	tester.Eq(t, f.transport.creates, 1)
}

func TestSnapshotSavedAfterCommit(t *testing.T) {
	f := newFixture(AttachUpload, "Hi there!")
	_, err := f.session.Processor.ProcessText(context.Background(), "Hello")
	tester.NoErr(t, err)
	tester.Eq(t, f.saver.saves, 1)
	tester.Eq(t, len(f.saver.last), 2)
}

func TestSnapshotFailureDoesNotPropagate(t *testing.T) {
	f := newFixture(AttachUpload, "Hi there!")
	f.saver.err = errors.New("db down")
	_, err := f.session.Processor.ProcessText(context.Background(), "Hello")
	tester.NoErr(t, err)
	tester.Eq(t, f.session.Transcript.Len(), 2)
}
