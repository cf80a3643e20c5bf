package vision

import "strings"

const (
	// DefaultInstruction is the base instruction sent with every image.
	DefaultInstruction = "Describe lo que ves en la imagen en español."

	// DefaultContextSeparator joins the base instruction and the user's context.
	DefaultContextSeparator = "\n\nContexto adicional proporcionado por el usuario:\n"
)

// PromptRequest is a single-turn request: instruction text plus one image.
// It is built fresh for every analysis.
type PromptRequest struct {
	Instruction string
	Context     string
	Separator   string
	Image       EncodedImage
}

// BuildPrompt assembles a PromptRequest. The user's context is kept only when
// wantsContext is set and the text is not blank.
func BuildPrompt(instruction, separator string, wantsContext bool, context string, image EncodedImage) PromptRequest {
	if instruction == "" {
		instruction = DefaultInstruction
	}
	if separator == "" {
		separator = DefaultContextSeparator
	}

	req := PromptRequest{
		Instruction: instruction,
		Separator:   separator,
		Image:       image,
	}
	if wantsContext && strings.TrimSpace(context) != "" {
		req.Context = context
	}
	return req
}

// Text is the text part of the request.
func (r PromptRequest) Text() string {
	if r.Context == "" {
		return r.Instruction
	}
	return r.Instruction + r.Separator + r.Context
}

// HasContext reports whether user context was appended.
func (r PromptRequest) HasContext() bool {
	return r.Context != ""
}
