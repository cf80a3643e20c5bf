package server

import (
	"bufio"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/glimpse/pkg/llm"
	"github.com/papercomputeco/glimpse/pkg/markdown"
)

// streamSurface publishes renderer output as NDJSON events on a streaming
// response body. Every event is flushed so the page sees it immediately.
type streamSurface struct {
	w        *bufio.Writer
	markdown *markdown.Renderer
	logger   *zap.Logger
}

func (s *streamSurface) Update(display string) error {
	return s.send(llm.Event{Event: llm.EventUpdate, Text: display, HTML: s.html(display)})
}

func (s *streamSurface) Finish(text string) error {
	return s.send(llm.Event{Event: llm.EventDone, Text: text, HTML: s.html(text)})
}

func (s *streamSurface) Fail(message string) error {
	return s.send(llm.Event{Event: llm.EventError, Text: message})
}

// html renders text as markdown, falling back to the plain text on error.
func (s *streamSurface) html(text string) string {
	out, err := s.markdown.HTML(text)
	if err != nil {
		s.logger.Warn("failed to render markdown", zap.Error(err))
		return ""
	}
	return out
}

func (s *streamSurface) send(ev llm.Event) error {
	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := s.w.Write(line); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}
