package store

import (
	"context"
	"encoding/json"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/chat"
)

func (s *SnapshotStore) ensureSchema() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS transcript_snapshots (
  session_id TEXT PRIMARY KEY,
  turns JSONB NOT NULL DEFAULT '[]',
  saved_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`)
	})
	return s.schemaErr
}

func (s *SnapshotStore) saveDB(ctx context.Context, snap Snapshot) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	turns, err := json.Marshal(snap.Turns)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO transcript_snapshots (session_id, turns, saved_at)
VALUES ($1, $2, $3)
ON CONFLICT (session_id) DO UPDATE SET turns = EXCLUDED.turns, saved_at = EXCLUDED.saved_at
`, snap.SessionID, turns, snap.SavedAt)
	return err
}

func (s *SnapshotStore) loadDB(ctx context.Context, sessionID string) (Snapshot, bool) {
	if err := s.ensureSchema(); err != nil {
		return Snapshot{}, false
	}
	var snap Snapshot
	var raw []byte
	row := s.db.QueryRowContext(ctx, `SELECT session_id, turns, saved_at
FROM transcript_snapshots WHERE session_id = $1`, sessionID)
	if err := row.Scan(&snap.SessionID, &raw, &snap.SavedAt); err != nil {
		return Snapshot{}, false
	}
	var turns []chat.Turn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return Snapshot{}, false
	}
	snap.Turns = turns
	return snap, true
}
