package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

func (s *SnapshotStore) ensureLoadedFile() {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var rows []Snapshot
		if err := json.Unmarshal(b, &rows); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, row := range rows {
			id := strings.TrimSpace(row.SessionID)
			if id == "" {
				continue
			}
			s.byID[id] = row
		}
	})
}

func (s *SnapshotStore) saveFile(snap Snapshot) error {
	s.ensureLoadedFile()
	s.mu.Lock()
	s.byID[snap.SessionID] = snap
	rows := make([]Snapshot, 0, len(s.byID))
	for _, row := range s.byID {
		rows = append(rows, row)
	}
	s.mu.Unlock()

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (s *SnapshotStore) loadFile(sessionID string) (Snapshot, bool) {
	s.ensureLoadedFile()
	s.mu.RLock()
	snap, ok := s.byID[sessionID]
	s.mu.RUnlock()
	return snap, ok
}
