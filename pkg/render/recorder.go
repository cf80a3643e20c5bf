package render

// Publication is one call made on a Recorder.
type Publication struct {
	Kind string // "update", "finish" or "fail"
	Text string
}

// Recorder is a Surface that keeps every publication in memory. It backs the
// MCP tool and tests.
type Recorder struct {
	Publications []Publication
}

func (r *Recorder) Update(display string) error {
	r.Publications = append(r.Publications, Publication{Kind: "update", Text: display})
	return nil
}

func (r *Recorder) Finish(text string) error {
	r.Publications = append(r.Publications, Publication{Kind: "finish", Text: text})
	return nil
}

func (r *Recorder) Fail(message string) error {
	r.Publications = append(r.Publications, Publication{Kind: "fail", Text: message})
	return nil
}

// Last returns the most recent publication, or the zero value.
func (r *Recorder) Last() Publication {
	if len(r.Publications) == 0 {
		return Publication{}
	}
	return r.Publications[len(r.Publications)-1]
}

// Updates returns the text of every progressive update in order.
func (r *Recorder) Updates() []string {
	var out []string
	for _, p := range r.Publications {
		if p.Kind == "update" {
			out = append(out, p.Text)
		}
	}
	return out
}
