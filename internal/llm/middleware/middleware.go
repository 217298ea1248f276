package llm

import "github.com/rsherod/DCI691Build2-InterventionSearcher/internal/chat"

// Middleware wraps a Transport with a cross-cutting concern.
type Middleware func(next chat.Transport) chat.Transport

// Chain applies middlewares so the first listed is outermost.
func Chain(base chat.Transport, mws ...Middleware) chat.Transport {
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}
