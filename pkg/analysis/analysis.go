// Package analysis runs one image analysis end to end: validate the collected
// input, build the prompt, open the model stream and render it.
package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/glimpse/pkg/llm"
	"github.com/papercomputeco/glimpse/pkg/render"
	"github.com/papercomputeco/glimpse/pkg/vision"
)

// Prompt configures the text sent with every image.
type Prompt struct {
	Instruction string
	Separator   string
}

// Analyzer is stateless between analyses and safe for concurrent use.
type Analyzer struct {
	describer llm.Describer
	renderer  *render.Renderer
	prompt    Prompt
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates an Analyzer. A zero timeout means no per-analysis deadline.
func New(describer llm.Describer, prompt Prompt, timeout time.Duration, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		describer: describer,
		renderer:  render.New(logger),
		prompt:    prompt,
		timeout:   timeout,
		logger:    logger,
	}
}

// Prepare validates in and builds its request. It returns a
// *MissingInputError when the image or the credential is absent.
func (a *Analyzer) Prepare(in Input) (vision.PromptRequest, error) {
	if err := in.Validate(); err != nil {
		return vision.PromptRequest{}, err
	}
	return vision.BuildPrompt(
		a.prompt.Instruction,
		a.prompt.Separator,
		in.WantsContext,
		in.Context,
		vision.EncodeAsset(in.Image),
	), nil
}

// Analyze validates in and, if complete, streams the model's answer into
// surface. Missing inputs are returned without touching the network or the
// surface.
func (a *Analyzer) Analyze(ctx context.Context, in Input, surface render.Surface) (render.Result, error) {
	req, err := a.Prepare(in)
	if err != nil {
		return render.Result{State: render.Idle}, err
	}
	return a.Run(ctx, NewID(), req, in.Credential, surface), nil
}

// NewID returns a fresh analysis id for log correlation.
func NewID() string {
	return uuid.NewString()
}

// Run streams an already prepared request into surface. id tags the log lines
// of this analysis.
func (a *Analyzer) Run(ctx context.Context, id string, req vision.PromptRequest, credential string, surface render.Surface) render.Result {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	logger := a.logger.With(
		zap.String("analysis_id", id),
		zap.String("provider", a.describer.Name()),
	)

	logger.Info("analysis started",
		zap.String("media_type", req.Image.MediaType),
		zap.Int("encoded_size", len(req.Image.Data)),
		zap.Bool("with_context", req.HasContext()),
	)

	stream := a.describer.Describe(ctx, req, credential)
	res := a.renderer.Render(ctx, stream, surface)

	if res.State == render.Failed {
		logger.Error("analysis failed",
			zap.Int("fragments", res.Fragments),
			zap.Duration("duration", time.Since(start)),
			zap.Error(res.Err),
		)
	} else {
		logger.Info("analysis complete",
			zap.Int("fragments", res.Fragments),
			zap.Int("length", len(res.Text)),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return res
}
