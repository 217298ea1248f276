// Package store persists transcript snapshots after committed turns. The
// backend is a JSON file by default and Postgres when a DSN is configured.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/chat"
)

// Snapshot is one persisted transcript state.
type Snapshot struct {
	SessionID string      `json:"session_id"`
	Turns     []chat.Turn `json:"turns"`
	SavedAt   time.Time   `json:"saved_at"`
}

// SnapshotStore implements chat.SnapshotSaver over a file or Postgres.
type SnapshotStore struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	byID     map[string]Snapshot

	schemaOnce sync.Once
	schemaErr  error
}

func New(path string) *SnapshotStore {
	return &SnapshotStore{
		path: path,
		byID: make(map[string]Snapshot),
	}
}

func NewPostgres(dsn string) (*SnapshotStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SnapshotStore{db: db}, nil
}

// NewFromEnv picks Postgres when SNAPSHOT_PG_DSN is set and reachable, the
// JSON file otherwise.
func NewFromEnv(path string) *SnapshotStore {
	dsn := strings.TrimSpace(os.Getenv("SNAPSHOT_PG_DSN"))
	if dsn == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(path)
	}
	return s
}

// Save upserts the snapshot for one session.
func (s *SnapshotStore) Save(ctx context.Context, sessionID string, turns []chat.Turn) error {
	if s == nil {
		return nil
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	snap := Snapshot{SessionID: sessionID, Turns: turns, SavedAt: time.Now().UTC()}
	if s.db != nil {
		return s.saveDB(ctx, snap)
	}
	return s.saveFile(snap)
}

// Load returns the last saved snapshot for a session.
func (s *SnapshotStore) Load(ctx context.Context, sessionID string) (Snapshot, bool) {
	if s == nil {
		return Snapshot{}, false
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Snapshot{}, false
	}
	if s.db != nil {
		return s.loadDB(ctx, sessionID)
	}
	return s.loadFile(sessionID)
}

func (s *SnapshotStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
