package describecmder

import (
	"bytes"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/glimpse/pkg/render"
)

type recordingSender struct {
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.msgs = append(r.msgs, msg)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

var _ = Describe("Terminal surfaces", func() {
	Describe("model", func() {
		It("shows the spinner label and the growing text", func() {
			m := newModel(nil, nil, 0)
			updated, _ := m.Update(updateMsg("Una foto" + render.TypingMarker))

			view := updated.View()
			Expect(view).To(ContainSubstring(analyzingLabel))
			Expect(view).To(ContainSubstring("Una foto" + render.TypingMarker))
		})

		It("quits with the final text on finish", func() {
			m := newModel(nil, nil, 0)
			updated, cmd := m.Update(finishMsg("Una foto de un gato."))

			Expect(cmd).NotTo(BeNil())
			Expect(cmd()).To(Equal(tea.Quit()))
			Expect(updated.View()).To(ContainSubstring("Una foto de un gato."))
			Expect(updated.View()).NotTo(ContainSubstring(analyzingLabel))
		})

		It("keeps the partial text without the marker on failure", func() {
			m := newModel(nil, nil, 0)
			next, _ := m.Update(updateMsg("Una" + render.TypingMarker))
			next, cmd := next.Update(failMsg("⚠️ Ha ocurrido un error: boom"))

			Expect(cmd).NotTo(BeNil())
			view := next.View()
			Expect(view).To(ContainSubstring("Una"))
			Expect(view).NotTo(ContainSubstring(render.TypingMarker))
			Expect(view).To(ContainSubstring("Ha ocurrido un error: boom"))
		})

		It("wraps the streaming text to the terminal width", func() {
			m := newModel(nil, nil, 0)
			next, _ := m.Update(tea.WindowSizeMsg{Width: 10, Height: 20})
			next, _ = next.Update(updateMsg("una foto de un gato negro"))

			view := next.View()
			Expect(view).NotTo(ContainSubstring("una foto de un gato negro"))
			Expect(view).To(ContainSubstring("negro"))
		})

		It("cancels the analysis on ctrl+c", func() {
			cancelled := false
			m := newModel(func() { cancelled = true }, nil, 0)
			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

			Expect(cancelled).To(BeTrue())
			Expect(cmd).To(BeNil())
		})
	})

	Describe("teaSurface", func() {
		It("forwards each publication as a message", func() {
			rec := &recordingSender{}
			s := &teaSurface{program: rec}

			Expect(s.Update("a" + render.TypingMarker)).To(Succeed())
			Expect(s.Finish("ab")).To(Succeed())

			Expect(rec.msgs).To(Equal([]tea.Msg{updateMsg("a" + render.TypingMarker), finishMsg("ab")}))
		})
	})

	Describe("plainSurface", func() {
		It("writes only new text and drops the marker", func() {
			var out, errOut bytes.Buffer
			s := newPlainSurface(&out, &errOut)

			Expect(s.Update("Una" + render.TypingMarker)).To(Succeed())
			Expect(s.Update("Una foto" + render.TypingMarker)).To(Succeed())
			Expect(s.Finish("Una foto")).To(Succeed())

			Expect(out.String()).To(Equal("Una foto\n"))
			Expect(errOut.String()).To(BeEmpty())
		})

		It("ends the partial line and reports failures on the error writer", func() {
			var out, errOut bytes.Buffer
			s := newPlainSurface(&out, &errOut)

			Expect(s.Update("Una" + render.TypingMarker)).To(Succeed())
			Expect(s.Fail("⚠️ Ha ocurrido un error: boom")).To(Succeed())

			Expect(out.String()).To(Equal("Una\n"))
			Expect(errOut.String()).To(ContainSubstring("boom"))
		})

		It("returns write errors", func() {
			s := newPlainSurface(failingWriter{}, &bytes.Buffer{})
			Expect(s.Update("Una" + render.TypingMarker)).NotTo(Succeed())
		})
	})
})
