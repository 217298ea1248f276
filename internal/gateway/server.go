package gateway

import (
	"log"
	"net/http"
	"sync"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/chat"
	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/docs"
)

// Server exposes one conversation session over HTTP and websocket. All
// session mutation goes through s.mu, so at most one turn is in flight at a
// time regardless of how many clients are connected.
type Server struct {
	mu      sync.Mutex
	session *chat.Session
	ingest  *docs.Ingestor
	log     *log.Logger
}

func NewServer(session *chat.Session, ingest *docs.Ingestor, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{session: session, ingest: ingest, log: logger}
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/transcript", s.handleTranscript)
	mux.HandleFunc("/api/message", s.handleMessage)
	mux.HandleFunc("/api/form", s.handleForm)
	mux.HandleFunc("/api/form/fields", s.handleFormFields)
	mux.HandleFunc("/api/preset", s.handlePreset)
	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.HandleFunc("/api/upload", s.handleUpload)
	mux.HandleFunc("/api/clear", s.handleClear)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/debug", s.handleDebug)
	mux.HandleFunc("/ws/chat", s.handleChatWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
