// Package genai is the boundary to the generative-language API. The core
// only sees the Moderator and Suggester interfaces; the OpenAI-backed
// implementation lives behind them so tests can substitute stubs.
package genai

import "context"

// Verdict is the moderation classification of a message.
type Verdict int

const (
	VerdictSafe Verdict = iota
	VerdictUnsafe
)

// Moderator classifies a message before it is committed to a conversation.
// Implementations must treat transport failures as fail-open: on error the
// send pipeline proceeds as if the verdict were Safe.
type Moderator interface {
	Classify(ctx context.Context, text string) (Verdict, error)
}

// Suggester produces a chat opener for a matched user. Advisory only:
// any failure yields a static fallback line, never an error surface.
type Suggester interface {
	SuggestOpener(ctx context.Context, displayName string) (string, error)
}
