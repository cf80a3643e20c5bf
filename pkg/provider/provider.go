// Package provider implements llm.Describer on top of the OpenAI and
// Anthropic SDKs. Clients are built per call from the caller's credential.
package provider

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/papercomputeco/glimpse/pkg/llm"
)

const (
	OpenAI    = "openai"
	Anthropic = "anthropic"
)

// DefaultMaxTokens bounds the length of every answer.
const DefaultMaxTokens = 1200

// Options configures a Describer.
type Options struct {
	// Provider is OpenAI or Anthropic.
	Provider string

	// BaseURL overrides the provider's API endpoint (e.g. an OpenAI-compatible gateway).
	BaseURL string

	// Model defaults to the provider's DefaultModel.
	Model string

	MaxTokens int

	// HTTPClient is shared by every call; nil uses a client with a generous timeout.
	HTTPClient *http.Client
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case Anthropic:
		return "claude-sonnet-4-5-20250929"
	default:
		return "gpt-4o"
	}
}

// ErrUnknownProvider is returned by New for unsupported provider names.
var ErrUnknownProvider = errors.New("unknown provider")

// New returns the Describer for opts.Provider.
func New(opts Options) (llm.Describer, error) {
	if opts.Provider == "" {
		opts.Provider = OpenAI
	}
	if opts.Model == "" {
		opts.Model = DefaultModel(opts.Provider)
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			// Vision requests stream for a while on large images
			Timeout: 5 * time.Minute,
		}
	}

	switch opts.Provider {
	case OpenAI:
		return &openAIDescriber{opts: opts}, nil
	case Anthropic:
		return &anthropicDescriber{opts: opts}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
}

// sdkStream is the shape shared by both SDKs' ssestream.Stream types.
type sdkStream[T any] interface {
	Next() bool
	Current() T
	Err() error
	Close() error
}

// fragmentStream adapts an SDK event stream to llm.Stream.
type fragmentStream[T any] struct {
	provider string
	src      sdkStream[T]
	text     func(T) string
	status   func(error) int
	current  string
}

func (s *fragmentStream[T]) Next() bool {
	if !s.src.Next() {
		s.current = ""
		return false
	}
	s.current = s.text(s.src.Current())
	return true
}

func (s *fragmentStream[T]) Fragment() string {
	return s.current
}

func (s *fragmentStream[T]) Err() error {
	err := s.src.Err()
	if err == nil {
		return nil
	}
	return llm.AsTransportError(s.provider, s.status(err), err)
}

func (s *fragmentStream[T]) Close() error {
	return s.src.Close()
}

// failedStream reports err without producing fragments.
type failedStream struct {
	err error
}

func (s failedStream) Next() bool       { return false }
func (s failedStream) Fragment() string { return "" }
func (s failedStream) Err() error       { return s.err }
func (s failedStream) Close() error     { return nil }
