package llm

// Event kinds relayed to the browser, one JSON object per line.
const (
	EventUpdate = "update" // progressive text, includes the typing marker
	EventDone   = "done"   // final text, exactly once on success
	EventError  = "error"  // terminal error, exactly once on failure
)

// Event is a single NDJSON line of an analysis response stream.
type Event struct {
	Event string `json:"event"`
	Text  string `json:"text"`           // Plain text as published by the renderer
	HTML  string `json:"html,omitempty"` // Sanitized markdown rendering of Text
}
