package chat

import (
	"fmt"
	"time"
)

// DebugNote is one diagnostic entry of the observability log.
type DebugNote struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// DebugLog collects diagnostic notes about session initialization, uploads
// and per-turn outcomes. Display-only; never part of the transcript.
type DebugLog struct {
	notes []DebugNote
	now   func() time.Time
}

func NewDebugLog() *DebugLog {
	return &DebugLog{now: time.Now}
}

func (d *DebugLog) Append(format string, args ...any) {
	if d == nil {
		return
	}
	d.notes = append(d.notes, DebugNote{At: d.now(), Text: fmt.Sprintf(format, args...)})
}

func (d *DebugLog) Notes() []DebugNote {
	if d == nil {
		return nil
	}
	out := make([]DebugNote, len(d.notes))
	copy(out, d.notes)
	return out
}

func (d *DebugLog) Reset() {
	if d == nil {
		return
	}
	d.notes = nil
}
