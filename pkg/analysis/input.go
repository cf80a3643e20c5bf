package analysis

import (
	"strings"

	"github.com/papercomputeco/glimpse/pkg/vision"
)

// Field names an input required before an analysis can start.
type Field string

const (
	FieldImage      Field = "image"
	FieldCredential Field = "credential"
)

var warnings = map[Field]string{
	FieldImage:      "📥 Por favor sube una imagen para analizar.",
	FieldCredential: "🔑 Debes ingresar tu API key para continuar.",
}

// Input is everything collected from the user for one analysis.
type Input struct {
	Image        *vision.ImageAsset
	WantsContext bool
	Context      string
	Credential   string
}

// MissingInputError lists the required inputs that were absent.
type MissingInputError struct {
	Fields []Field
}

func (e *MissingInputError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return "missing input: " + strings.Join(names, ", ")
}

// Warnings returns the user-facing message for every missing field.
func (e *MissingInputError) Warnings() []string {
	out := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = warnings[f]
	}
	return out
}

// Has reports whether f is among the missing fields.
func (e *MissingInputError) Has(f Field) bool {
	for _, field := range e.Fields {
		if field == f {
			return true
		}
	}
	return false
}

// Validate checks that an image and a credential are present.
func (in Input) Validate() error {
	var missing []Field
	if in.Image == nil || in.Image.Size() == 0 {
		missing = append(missing, FieldImage)
	}
	if strings.TrimSpace(in.Credential) == "" {
		missing = append(missing, FieldCredential)
	}
	if len(missing) > 0 {
		return &MissingInputError{Fields: missing}
	}
	return nil
}
