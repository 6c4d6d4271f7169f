package core

import "context"

// CompleteOptions tune a single completion call.
type CompleteOptions struct {
	MaxTokens   int
	Temperature float64
}

// Completion is the result of one generation call. Tokens is the
// completion token count reported by the server, zero if absent.
type Completion struct {
	Text   string
	Tokens int
}

// Generator is the boundary to the text-completion capability. The core
// knows nothing about the model behind it.
type Generator interface {
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (Completion, error)
}

// Journal persists thought records append-only. A journal failure must
// never stop the cognition loop.
type Journal interface {
	Append(ctx context.Context, sessionID string, rec ThoughtRecord, contextSize int) error
}
