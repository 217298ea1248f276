package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/chat"
)

const maxUploadBytes = 32 << 20

type turnResponse struct {
	SessionID string    `json:"sessionId"`
	Turn      chat.Turn `json:"turn"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// turnErrorCode maps the conversation error taxonomy onto wire codes.
// Rejected preconditions are the caller's problem; transport and
// session-init failures are the upstream's.
func turnErrorCode(err error) string {
	var pre *chat.PreconditionError
	var cfg *chat.ConfigurationError
	var transport *chat.TransportError
	var sessionInit *chat.SessionInitError
	switch {
	case errors.As(err, &pre):
		return "precondition_failed"
	case errors.As(err, &cfg):
		return "invalid_config"
	case errors.As(err, &transport):
		return "upstream_failed"
	case errors.As(err, &sessionInit):
		return "session_init_failed"
	default:
		return "internal"
	}
}

func writeTurnError(w http.ResponseWriter, err error) {
	code := turnErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case "precondition_failed":
		status = http.StatusUnprocessableEntity
	case "invalid_config":
		status = http.StatusBadRequest
	case "upstream_failed", "session_init_failed":
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	turns := s.session.Transcript.Turns()
	id := s.session.ID
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": id,
		"turns":     turns,
	})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	turn, err := s.session.Processor.ProcessText(r.Context(), text)
	s.mu.Unlock()
	if err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, turnResponse{SessionID: s.session.ID, Turn: turn})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		Values map[string]string `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	turn, err := s.session.Processor.ProcessForm(r.Context(), chat.FormSubmission{Values: in.Values})
	s.mu.Unlock()
	if err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, turnResponse{SessionID: s.session.ID, Turn: turn})
}

func (s *Server) handleFormFields(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fields":      chat.FormFields(),
		"placeholder": chat.PlaceholderOption,
	})
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	preset, ok := chat.PresetByName(in.Name)
	if !ok {
		http.Error(w, "unknown preset", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	turn, err := s.session.Processor.ProcessPreset(r.Context(), preset)
	s.mu.Unlock()
	if err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, turnResponse{SessionID: s.session.ID, Turn: turn})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"presets": chat.Presets()})
}

// handleUpload attaches a reference grid. In upload mode the PDF bytes go to
// the model's file store; in seed mode the client sends pre-extracted text
// and only that text is kept.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	slot, err := parseSlot(r.FormValue("slot"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Docs.Mode() == chat.AttachSeed {
		text := strings.TrimSpace(r.FormValue("text"))
		if text == "" {
			http.Error(w, "text is required in seed mode", http.StatusBadRequest)
			return
		}
		s.session.Docs.AttachText(slot, text)
		s.session.Debug.Append("document text attached to %s (%d bytes)", slot, len(text))
		writeJSON(w, http.StatusOK, map[string]any{"slot": slot, "attached": true})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	ref, err := s.ingest.IngestPDF(r.Context(), s.session.ID, header.Filename, content)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Code: "upload_failed", Message: err.Error()})
		return
	}
	s.session.Docs.AttachRef(slot, ref)
	s.session.Debug.Append("document %s attached to %s", header.Filename, slot)
	writeJSON(w, http.StatusOK, map[string]any{"slot": slot, "attached": true, "ref": ref})
}

func parseSlot(raw string) (chat.DocumentSlot, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(chat.SlotTier2):
		return chat.SlotTier2, nil
	case string(chat.SlotTier3):
		return chat.SlotTier3, nil
	default:
		return "", errors.New("slot must be tier2 or tier3")
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	s.session.Reset()
	s.mu.Unlock()
	s.log.Printf("session %s cleared", s.session.ID)
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		cfg := s.session.Manager.Config()
		live := s.session.Manager.Live()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{
			"model":       cfg.Model,
			"temperature": cfg.Temperature,
			"sessionLive": live,
		})
	case http.MethodPost:
		var in struct {
			Model       string   `json:"model,omitempty"`
			Temperature *float32 `json:"temperature,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		if m := strings.TrimSpace(in.Model); m != "" {
			s.session.SetModel(m)
		}
		var setErr error
		if in.Temperature != nil {
			setErr = s.session.Manager.SetTemperature(*in.Temperature)
		}
		cfg := s.session.Manager.Config()
		s.mu.Unlock()
		if setErr != nil {
			writeTurnError(w, setErr)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"model":       cfg.Model,
			"temperature": cfg.Temperature,
		})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	notes := s.session.Debug.Notes()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}
