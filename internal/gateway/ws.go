package gateway

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/chat"
)

const (
	chatWSWriteWait = 10 * time.Second
	chatWSPongWait  = 60 * time.Second
	chatWSPingEvery = (chatWSPongWait * 9) / 10
)

var chatWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type chatWSInbound struct {
	Type   string            `json:"type"`
	Text   string            `json:"text,omitempty"`
	Name   string            `json:"name,omitempty"`
	Values map[string]string `json:"values,omitempty"`
}

type chatWSOutbound struct {
	Type      string     `json:"type"`
	SessionID string     `json:"sessionId,omitempty"`
	Turn      *chat.Turn `json:"turn,omitempty"`
	Code      string     `json:"code,omitempty"`
	Message   string     `json:"message,omitempty"`
}

func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := chatWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(chatWSPongWait)); err != nil {
		s.log.Printf("chat ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatWSPongWait))
	})

	writeCh := make(chan chatWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(chatWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	s.pushChatWS(writeCh, chatWSOutbound{Type: "connected", SessionID: s.session.ID})

	for {
		var in chatWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		msgType := strings.ToLower(strings.TrimSpace(in.Type))

		switch msgType {
		case "ping":
			s.pushChatWS(writeCh, chatWSOutbound{Type: "pong"})
		case "message":
			text := strings.TrimSpace(in.Text)
			if text == "" {
				s.pushChatWS(writeCh, chatWSOutbound{
					Type:    "error",
					Code:    "invalid_argument",
					Message: "text is required",
				})
				continue
			}
			s.runTurn(ctx, writeCh, text, func(ctx context.Context) (chat.Turn, error) {
				return s.session.Processor.ProcessText(ctx, text)
			})
		case "preset":
			preset, ok := chat.PresetByName(in.Name)
			if !ok {
				s.pushChatWS(writeCh, chatWSOutbound{
					Type:    "error",
					Code:    "invalid_argument",
					Message: "unknown preset: " + strings.TrimSpace(in.Name),
				})
				continue
			}
			s.runTurn(ctx, writeCh, preset.Prompt, func(ctx context.Context) (chat.Turn, error) {
				return s.session.Processor.ProcessPreset(ctx, preset)
			})
		case "form":
			sub := chat.FormSubmission{Values: in.Values}
			s.runTurn(ctx, writeCh, sub.Digest(), func(ctx context.Context) (chat.Turn, error) {
				return s.session.Processor.ProcessForm(ctx, sub)
			})
		case "clear":
			s.mu.Lock()
			s.session.Reset()
			s.mu.Unlock()
			s.pushChatWS(writeCh, chatWSOutbound{Type: "cleared", SessionID: s.session.ID})
		default:
			s.pushChatWS(writeCh, chatWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "unsupported type: " + msgType,
			})
		}
	}
}

// runTurn drives one turn and mirrors both sides back to the client. Turn
// events only go out once the turn is committed, so a rejected or failed
// turn emits nothing but the error; the client view stays consistent with
// the rolled-back transcript.
func (s *Server) runTurn(ctx context.Context, writeCh chan chatWSOutbound, visible string, run func(context.Context) (chat.Turn, error)) {
	s.mu.Lock()
	turn, err := run(ctx)
	s.mu.Unlock()
	if err != nil {
		s.pushChatWS(writeCh, chatWSOutbound{
			Type:    "turn_failed",
			Code:    turnErrorCode(err),
			Message: err.Error(),
		})
		return
	}
	userTurn := chat.Turn{Role: chat.RoleUser, Text: visible, Seq: turn.Seq - 1}
	s.pushChatWS(writeCh, chatWSOutbound{Type: "user_turn", SessionID: s.session.ID, Turn: &userTurn})
	s.pushChatWS(writeCh, chatWSOutbound{Type: "assistant_turn", SessionID: s.session.ID, Turn: &turn})
}

// pushChatWS enqueues without blocking the turn path. A stalled writer costs
// the oldest queued event; the drop is logged so a lossy client is visible
// server-side.
func (s *Server) pushChatWS(writeCh chan chatWSOutbound, out chatWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case dropped := <-writeCh:
		s.log.Printf("chat ws: dropped queued %s event for slow client", dropped.Type)
	default:
	}
	select {
	case writeCh <- out:
	default:
		s.log.Printf("chat ws: dropped outbound %s event for slow client", out.Type)
	}
}
