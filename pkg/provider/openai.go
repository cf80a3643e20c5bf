package provider

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/papercomputeco/glimpse/pkg/llm"
	"github.com/papercomputeco/glimpse/pkg/vision"
)

type openAIDescriber struct {
	opts Options
}

func (d *openAIDescriber) Name() string {
	return OpenAI
}

func (d *openAIDescriber) Describe(ctx context.Context, req vision.PromptRequest, credential string) llm.Stream {
	if credential == "" {
		return failedStream{err: &llm.TransportError{Provider: OpenAI, Err: errors.New("missing API key")}}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(credential),
		option.WithHTTPClient(d.opts.HTTPClient),
		option.WithMaxRetries(0),
	}
	if d.opts.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(d.opts.BaseURL))
	}
	client := openai.NewClient(opts...)

	stream := client.Chat.Completions.NewStreaming(ctx, buildOpenAIParams(req, d.opts.Model, d.opts.MaxTokens))

	return &fragmentStream[openai.ChatCompletionChunk]{
		provider: OpenAI,
		src:      stream,
		text:     openAIChunkText,
		status:   openAIStatus,
	}
}

func buildOpenAIParams(req vision.PromptRequest, model string, maxTokens int) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(req.Text()),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: req.Image.DataURI(),
				}),
			}),
		},
		MaxTokens: openai.Int(int64(maxTokens)),
	}
}

// openAIChunkText returns "" for chunks without choices or delta content.
func openAIChunkText(chunk openai.ChatCompletionChunk) string {
	if len(chunk.Choices) == 0 {
		return ""
	}
	return chunk.Choices[0].Delta.Content
}

func openAIStatus(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
