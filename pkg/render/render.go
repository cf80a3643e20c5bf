// Package render accumulates a streamed model answer and republishes the
// growing text to a display surface.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/glimpse/pkg/llm"
)

// TypingMarker is appended to progressive updates only. It is never part of
// the accumulated text.
const TypingMarker = "▌"

// State is the renderer's position in an analysis.
type State int

const (
	Idle State = iota
	Streaming
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Surface receives the rendered output of one analysis: zero or more updates
// followed by exactly one Finish or Fail.
type Surface interface {
	Update(display string) error
	Finish(text string) error
	Fail(message string) error
}

// Result is the terminal outcome of Render.
type Result struct {
	State     State
	Text      string
	Fragments int
	Err       error
}

// Renderer drives a Surface from an llm.Stream.
type Renderer struct {
	logger *zap.Logger

	// ErrorFormat formats the user-visible message for a failure. It receives
	// the error detail.
	ErrorFormat string
}

// DefaultErrorFormat is the user-visible failure message.
const DefaultErrorFormat = "⚠️ Ha ocurrido un error: %v"

// New returns a Renderer. A nil logger disables logging.
func New(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{logger: logger, ErrorFormat: DefaultErrorFormat}
}

// ErrSurface wraps failures to write to the display surface.
var ErrSurface = errors.New("display surface write failed")

// Render consumes stream in arrival order until it is exhausted, fails, or ctx
// is done. The stream is closed before Render returns.
func (r *Renderer) Render(ctx context.Context, stream llm.Stream, surface Surface) Result {
	defer stream.Close()

	var acc strings.Builder
	res := Result{State: Streaming}

	for {
		if err := ctx.Err(); err != nil {
			return r.fail(surface, res, acc.String(), err)
		}
		if !stream.Next() {
			break
		}

		fragment := stream.Fragment()
		if fragment == "" {
			// Heartbeat event without text.
			continue
		}

		acc.WriteString(fragment)
		res.Fragments++

		if err := surface.Update(acc.String() + TypingMarker); err != nil {
			res.State = Failed
			res.Text = acc.String()
			res.Err = fmt.Errorf("%w: %w", ErrSurface, err)
			r.logger.Warn("stopping render", zap.Error(err))
			return res
		}
	}

	if err := stream.Err(); err != nil {
		return r.fail(surface, res, acc.String(), err)
	}
	// A cancelled context may also end the stream without an error of its own.
	if err := ctx.Err(); err != nil {
		return r.fail(surface, res, acc.String(), err)
	}

	res.State = Done
	res.Text = acc.String()
	if err := surface.Finish(res.Text); err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrSurface, err)
	}

	r.logger.Debug("render complete",
		zap.Int("fragments", res.Fragments),
		zap.Int("length", len(res.Text)),
	)
	return res
}

func (r *Renderer) fail(surface Surface, res Result, text string, err error) Result {
	res.State = Failed
	res.Text = text
	res.Err = err

	r.logger.Debug("render failed",
		zap.Int("fragments", res.Fragments),
		zap.Error(err),
	)

	if serr := surface.Fail(fmt.Sprintf(r.ErrorFormat, err)); serr != nil {
		res.Err = errors.Join(err, fmt.Errorf("%w: %w", ErrSurface, serr))
	}
	return res
}
