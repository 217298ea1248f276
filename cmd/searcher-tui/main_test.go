package main

import (
	"context"
	"strings"
	"testing"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/chat"
)

type scriptedHandle struct{ reply string }

func (h *scriptedHandle) Send(context.Context, []chat.MessagePart) (string, error) {
	return h.reply, nil
}

type scriptedTransport struct{ handle *scriptedHandle }

func (t *scriptedTransport) StartChat(context.Context, chat.ModelConfig, []chat.SeedMessage) (chat.SessionHandle, error) {
	return t.handle, nil
}

type scriptedSearcher struct{ results string }

func (s *scriptedSearcher) Search(context.Context, string) (string, error) {
	return s.results, nil
}

func newTestModel(reply string) model {
	session := chat.NewSession(chat.SessionOptions{
		Transport:    &scriptedTransport{handle: &scriptedHandle{reply: reply}},
		Searcher:     &scriptedSearcher{results: "web results"},
		Instructions: "Be helpful.",
		Config:       chat.ModelConfig{Model: "gemini-2.0-flash", Temperature: 0.5},
	})
	return initialModel(session)
}

func TestRenderReadsSnapshotNotLiveTranscript(t *testing.T) {
	m := newTestModel("Hi there!")

	// The processor mutates the transcript out of band (in the app this
	// happens on the runTurn goroutine). The view must not pick it up until
	// the turn settles.
	if _, err := m.session.Processor.ProcessText(context.Background(), "Hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.renderTranscript(); strings.Contains(got, "Hello") {
		t.Fatalf("render showed live transcript before turnDoneMsg: %q", got)
	}
}

func TestTurnDoneRefreshesSnapshot(t *testing.T) {
	m := newTestModel("Hi there!")
	m.inflight = true
	m.pending = "Hello"

	if _, err := m.session.Processor.ProcessText(context.Background(), "Hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updated, _ := m.Update(turnDoneMsg{})
	mm := updated.(model)

	if mm.inflight {
		t.Fatalf("expected turn to be settled")
	}
	if mm.pending != "" {
		t.Fatalf("expected pending input to be cleared, got %q", mm.pending)
	}
	if len(mm.turns) != 2 {
		t.Fatalf("expected 2 snapshot turns, got %d", len(mm.turns))
	}
	got := mm.renderTranscript()
	if !strings.Contains(got, "Hello") || !strings.Contains(got, "Hi there!") {
		t.Fatalf("expected both sides in render, got %q", got)
	}
}

func TestPendingInputShownWhileInflight(t *testing.T) {
	m := newTestModel("ignored")
	m.inflight = true
	m.pending = "What are tier 2 reading supports?"

	if got := m.renderTranscript(); !strings.Contains(got, "tier 2 reading supports") {
		t.Fatalf("expected pending input in render, got %q", got)
	}
}

func TestTurnDoneKeepsFailureOutOfSnapshot(t *testing.T) {
	m := newTestModel("ignored")
	m.inflight = true
	m.pending = "search"

	// An empty search query is rejected and the user turn rolled back; the
	// refreshed snapshot must stay empty.
	_, err := m.session.Processor.ProcessText(context.Background(), "search")
	updated, _ := m.Update(turnDoneMsg{err: err})
	mm := updated.(model)

	if len(mm.turns) != 0 {
		t.Fatalf("expected empty snapshot after rollback, got %d turns", len(mm.turns))
	}
	if !mm.statusErr {
		t.Fatalf("expected error status after failed turn")
	}
}
