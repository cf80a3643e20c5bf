// Package llm defines the provider-neutral contract for streaming a model's
// answer about an image, and the events relayed to display surfaces.
package llm

import (
	"context"

	"github.com/papercomputeco/glimpse/pkg/vision"
)

// Describer opens one streaming call to a remote multimodal model.
// The credential is passed on every call and never retained.
type Describer interface {
	// Name identifies the backing provider, e.g. "openai".
	Name() string

	// Describe starts the call. Failures to connect or authenticate are not
	// returned here; they surface from the stream's Err once Next reports false.
	Describe(ctx context.Context, req vision.PromptRequest, credential string) Stream
}

// Stream is a lazy, finite, non-restartable sequence of text fragments.
//
//	for s.Next() {
//		use(s.Fragment())
//	}
//	if err := s.Err(); err != nil { ... }
//
// Next may block until the service delivers more data. A fragment may be empty,
// meaning the service sent an event without new text.
type Stream interface {
	Next() bool
	Fragment() string
	Err() error
	Close() error
}
