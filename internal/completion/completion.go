// Package completion abstracts the external text-completion capability
// used for analysis, translation, and evaluation. The concrete client
// speaks the chat-completions HTTP protocol.
package completion

import (
	"context"
	"errors"

	"github.com/valpere/termitran/internal"
)

// Typed failures surfaced by a Client. Wrapped errors carry transport
// detail; callers match with errors.Is.
var (
	// ErrNotConfigured means no API key is set for this backend.
	ErrNotConfigured = errors.New("completion backend not configured")
	// ErrModelUnavailable means the requested model was rejected.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrRateLimited means the backend refused the call for rate reasons.
	ErrRateLimited = errors.New("rate limited")
	// ErrTimeout means the wall-clock budget for the call was exceeded.
	ErrTimeout = errors.New("completion timed out")
)

// Request describes one completion call.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Response is the completion output plus token accounting.
type Response struct {
	Text  string
	Model string
	Usage internal.Usage
}

// Client is an opaque text-completion capability.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	// Available reports nil when the client has credentials to attempt a call.
	Available() error
}
