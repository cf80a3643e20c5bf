package provider

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/papercomputeco/glimpse/pkg/llm"
	"github.com/papercomputeco/glimpse/pkg/vision"
)

type anthropicDescriber struct {
	opts Options
}

func (d *anthropicDescriber) Name() string {
	return Anthropic
}

func (d *anthropicDescriber) Describe(ctx context.Context, req vision.PromptRequest, credential string) llm.Stream {
	if credential == "" {
		return failedStream{err: &llm.TransportError{Provider: Anthropic, Err: errors.New("missing API key")}}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(credential),
		option.WithHTTPClient(d.opts.HTTPClient),
		option.WithMaxRetries(0),
	}
	if d.opts.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(d.opts.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	stream := client.Messages.NewStreaming(ctx, buildAnthropicParams(req, d.opts.Model, d.opts.MaxTokens))

	return &fragmentStream[anthropic.MessageStreamEventUnion]{
		provider: Anthropic,
		src:      stream,
		text:     anthropicEventText,
		status:   anthropicStatus,
	}
}

func buildAnthropicParams(req vision.PromptRequest, model string, maxTokens int) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(req.Text()),
				anthropic.NewImageBlockBase64(req.Image.MediaType, req.Image.Data),
			),
		},
	}
}

// anthropicEventText extracts text deltas; every other event is a heartbeat.
func anthropicEventText(event anthropic.MessageStreamEventUnion) string {
	switch ev := event.AsAny().(type) {
	case anthropic.ContentBlockDeltaEvent:
		switch delta := ev.Delta.AsAny().(type) {
		case anthropic.TextDelta:
			return delta.Text
		}
	}
	return ""
}

func anthropicStatus(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
