package llm

import (
	"context"
	"log"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/chat"
)

// WithLogging logs session creation, request size and errors. Provide a
// custom logger or nil to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next chat.Transport) chat.Transport {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next chat.Transport
	log  *log.Logger
}

func (l *logging) StartChat(ctx context.Context, cfg chat.ModelConfig, seed []chat.SeedMessage) (chat.SessionHandle, error) {
	l.log.Printf("chat start (model=%s temp=%.2f seed=%d)", cfg.Model, cfg.Temperature, len(seed))
	handle, err := l.next.StartChat(ctx, cfg, seed)
	if err != nil {
		l.log.Printf("chat start error (model=%s): %v", cfg.Model, err)
		return nil, err
	}
	return &loggingHandle{next: handle, log: l.log}, nil
}

type loggingHandle struct {
	next chat.SessionHandle
	log  *log.Logger
}

func (h *loggingHandle) Send(ctx context.Context, parts []chat.MessagePart) (string, error) {
	size := 0
	docs := 0
	for _, p := range parts {
		switch p.Kind {
		case chat.PartText:
			size += len(p.Text)
		case chat.PartDocument:
			docs++
		}
	}
	h.log.Printf("chat send: %d bytes, %d document parts", size, docs)
	reply, err := h.next.Send(ctx, parts)
	if err != nil {
		h.log.Printf("chat send error: %v", err)
	}
	return reply, err
}
