// Package llmtest provides in-memory llm.Describer and llm.Stream fakes.
package llmtest

import (
	"context"
	"sync"

	"github.com/papercomputeco/glimpse/pkg/llm"
	"github.com/papercomputeco/glimpse/pkg/vision"
)

// Stream replays a fixed list of fragments and then, optionally, an error.
type Stream struct {
	fragments []string
	err       error
	pos       int
	current   string
	closed    bool
}

// NewStream returns a stream over fragments that ends with err (nil for success).
func NewStream(err error, fragments ...string) *Stream {
	return &Stream{fragments: fragments, err: err}
}

func (s *Stream) Next() bool {
	if s.closed || s.pos >= len(s.fragments) {
		return false
	}
	s.current = s.fragments[s.pos]
	s.pos++
	return true
}

func (s *Stream) Fragment() string { return s.current }

func (s *Stream) Err() error {
	if s.pos < len(s.fragments) {
		return nil
	}
	return s.err
}

func (s *Stream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *Stream) Closed() bool { return s.closed }

// Call records one Describe invocation.
type Call struct {
	Request    vision.PromptRequest
	Credential string
}

// Describer hands out a prepared stream and records every call.
type Describer struct {
	mu     sync.Mutex
	calls  []Call
	stream func() llm.Stream
}

// NewDescriber returns a Describer whose calls return a fresh stream from newStream.
func NewDescriber(newStream func() llm.Stream) *Describer {
	return &Describer{stream: newStream}
}

func (d *Describer) Name() string { return "fake" }

func (d *Describer) Describe(_ context.Context, req vision.PromptRequest, credential string) llm.Stream {
	d.mu.Lock()
	d.calls = append(d.calls, Call{Request: req, Credential: credential})
	d.mu.Unlock()
	return d.stream()
}

// Calls returns the recorded invocations.
func (d *Describer) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}
