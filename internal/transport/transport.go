// Package transport defines the interface for pluggable command ingresses.
//
// Each ingress (currently HTTP; the voice loop has its own lifecycle)
// hands raw text requests to the dispatcher. The dispatcher doesn't care
// how requests arrive — it only works with the Transport contract.
package transport

import (
	"context"

	"github.com/nvalcourt/jockey/internal/command"
)

// Handler processes one incoming request and returns its result.
// The dispatcher provides this handler to each transport.
type Handler func(ctx context.Context, req command.Request) command.Result

// Transport is the interface that every ingress adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http").
	Name() string

	// Listen starts accepting incoming requests and dispatches them to the
	// handler. It blocks until the context is cancelled.
	Listen(ctx context.Context, handler Handler) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
