package analysis_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/glimpse/pkg/analysis"
	"github.com/papercomputeco/glimpse/pkg/llm"
	"github.com/papercomputeco/glimpse/pkg/llm/llmtest"
	"github.com/papercomputeco/glimpse/pkg/render"
	"github.com/papercomputeco/glimpse/pkg/vision"
)

var _ = Describe("Analyzer", func() {
	var (
		ctx       context.Context
		image     *vision.ImageAsset
		surface   *render.Recorder
		describer *llmtest.Describer
		analyzer  *analysis.Analyzer
		streamErr error
		fragments []string
	)

	BeforeEach(func() {
		ctx = context.Background()
		image = vision.NewImageAsset("cat.jpg", "", []byte{0xFF, 0xD8, 0xFF})
		surface = &render.Recorder{}
		streamErr = nil
		fragments = []string{"Una ", "foto ", "de ", "un gato."}
		describer = llmtest.NewDescriber(func() llm.Stream {
			return llmtest.NewStream(streamErr, fragments...)
		})
		analyzer = analysis.New(describer, analysis.Prompt{}, time.Minute, zap.NewNop())
	})

	It("streams the description", func() {
		res, err := analyzer.Analyze(ctx, analysis.Input{Image: image, Credential: "sk-test"}, surface)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.State).To(Equal(render.Done))
		Expect(surface.Last()).To(Equal(render.Publication{Kind: "finish", Text: "Una foto de un gato."}))

		calls := describer.Calls()
		Expect(calls).To(HaveLen(1))
		Expect(calls[0].Credential).To(Equal("sk-test"))
		Expect(calls[0].Request.Text()).To(Equal(vision.DefaultInstruction))
		Expect(calls[0].Request.Image.DataURI()).To(HavePrefix("data:image/jpeg;base64,"))
	})

	It("warns about a missing image without calling the model", func() {
		res, err := analyzer.Analyze(ctx, analysis.Input{Credential: "sk-test"}, surface)

		var missing *analysis.MissingInputError
		Expect(errors.As(err, &missing)).To(BeTrue())
		Expect(missing.Fields).To(Equal([]analysis.Field{analysis.FieldImage}))
		Expect(missing.Warnings()[0]).To(ContainSubstring("sube una imagen"))
		Expect(res.State).To(Equal(render.Idle))
		Expect(describer.Calls()).To(BeEmpty())
		Expect(surface.Publications).To(BeEmpty())
	})

	It("warns about a missing credential without calling the model", func() {
		_, err := analyzer.Analyze(ctx, analysis.Input{Image: image, Credential: "  "}, surface)

		var missing *analysis.MissingInputError
		Expect(errors.As(err, &missing)).To(BeTrue())
		Expect(missing.Has(analysis.FieldCredential)).To(BeTrue())
		Expect(missing.Has(analysis.FieldImage)).To(BeFalse())
		Expect(describer.Calls()).To(BeEmpty())
	})

	It("reports both missing inputs in order", func() {
		_, err := analyzer.Analyze(ctx, analysis.Input{}, surface)

		Expect(err).To(MatchError("missing input: image, credential"))
	})

	It("shows a single error on auth failure", func() {
		streamErr = &llm.TransportError{Provider: "fake", StatusCode: 401, Err: errors.New("Incorrect API key provided")}
		fragments = nil

		res, err := analyzer.Analyze(ctx, analysis.Input{Image: image, Credential: "sk-bad"}, surface)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.State).To(Equal(render.Failed))
		Expect(surface.Publications).To(HaveLen(1))
		Expect(surface.Last().Kind).To(Equal("fail"))
		Expect(surface.Last().Text).To(ContainSubstring("Incorrect API key provided"))
	})

	It("appends the user's question when opted in", func() {
		analyzer = analysis.New(describer, analysis.Prompt{Instruction: "Describe.", Separator: " | "}, 0, nil)

		_, err := analyzer.Analyze(ctx, analysis.Input{
			Image:        image,
			Credential:   "sk-test",
			WantsContext: true,
			Context:      "¿Qué raza es?",
		}, surface)

		Expect(err).NotTo(HaveOccurred())
		Expect(describer.Calls()[0].Request.Text()).To(Equal("Describe. | ¿Qué raza es?"))
	})

	It("ignores the question when not opted in", func() {
		_, err := analyzer.Analyze(ctx, analysis.Input{
			Image:      image,
			Credential: "sk-test",
			Context:    "¿Qué raza es?",
		}, surface)

		Expect(err).NotTo(HaveOccurred())
		Expect(describer.Calls()[0].Request.HasContext()).To(BeFalse())
	})
})
