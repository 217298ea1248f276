package llm

import (
	"context"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/chat"
)

// TurnHook defines callbacks around a session send.
type TurnHook interface {
	Before(ctx context.Context, parts []chat.MessagePart)
	After(ctx context.Context, reply string, err error)
}

type ctxKeyHook struct{}

// WithTurnHook attaches a TurnHook to the context. Transports wrapped by
// WithHooks invoke it around every send.
func WithTurnHook(ctx context.Context, hook TurnHook) context.Context {
	return context.WithValue(ctx, ctxKeyHook{}, hook)
}

// HookFrom returns the hook stored in the context.
func HookFrom(ctx context.Context) TurnHook {
	if v := ctx.Value(ctxKeyHook{}); v != nil {
		if h, ok := v.(TurnHook); ok {
			return h
		}
	}
	return nil
}

// WithHooks calls HookFrom(ctx).Before/After around Send. A context without
// a hook makes this a no-op.
func WithHooks() Middleware {
	return func(next chat.Transport) chat.Transport {
		return &hooked{next: next}
	}
}

type hooked struct{ next chat.Transport }

func (h *hooked) StartChat(ctx context.Context, cfg chat.ModelConfig, seed []chat.SeedMessage) (chat.SessionHandle, error) {
	handle, err := h.next.StartChat(ctx, cfg, seed)
	if err != nil {
		return nil, err
	}
	return &hookedHandle{next: handle}, nil
}

type hookedHandle struct{ next chat.SessionHandle }

func (h *hookedHandle) Send(ctx context.Context, parts []chat.MessagePart) (string, error) {
	if hook := HookFrom(ctx); hook != nil {
		hook.Before(ctx, parts)
	}
	reply, err := h.next.Send(ctx, parts)
	if hook := HookFrom(ctx); hook != nil {
		hook.After(ctx, reply, err)
	}
	return reply, err
}
