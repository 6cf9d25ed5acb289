package ai

import (
	"context"
	"errors"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is a stateless chat-completion adapter. Implementations own their
// timeout/retry policy and never touch storage.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Failure classes the orchestrator branches on. Wrapped with %w so callers
// use errors.Is.
var (
	// ErrModelUnavailable: transient upstream failure that persisted through retry.
	ErrModelUnavailable = errors.New("ai: model unavailable")
	// ErrInvalidRequest: the prompt or request config was rejected; retrying is pointless.
	ErrInvalidRequest = errors.New("ai: invalid request")
	// ErrAuthFailure: bad or missing credential; never retried.
	ErrAuthFailure = errors.New("ai: auth failure")
)
