package session

import "sync"

// EventKind names a Renderer call.
type EventKind string

const (
	EventMessage       EventKind = "message"
	EventShowLoading   EventKind = "show_loading"
	EventRemoveLoading EventKind = "remove_loading"
	EventClear         EventKind = "clear"
	EventEmptyState    EventKind = "empty_state"
	EventInput         EventKind = "input"
	EventUpload        EventKind = "upload"
	EventList          EventKind = "list"
	EventHighlight     EventKind = "highlight"
	EventPrompt        EventKind = "prompt"
)

// Event is one recorded Renderer call.
type Event struct {
	Kind    EventKind
	Message Message
	Flag    bool
	FileID  string
	Entries []ListEntry
	Text    string
}

// Recorder is a headless Renderer. Besides the raw event log it keeps the
// resulting view: the visible transcript, loading flag, and control state.
type Recorder struct {
	mu            sync.Mutex
	events        []Event
	transcript    []Message
	loading       bool
	inputEnabled  bool
	uploadVisible bool
	highlighted   string
	entries       []ListEntry
	placeholder   string
}

// NewRecorder returns a Recorder in the initial view state: input disabled,
// upload visible.
func NewRecorder() *Recorder { return &Recorder{uploadVisible: true} }

func (r *Recorder) record(e Event) {
	r.events = append(r.events, e)
}

func (r *Recorder) AppendMessage(m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Event{Kind: EventMessage, Message: m})
	r.transcript = append(r.transcript, m)
}

func (r *Recorder) ShowLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Event{Kind: EventShowLoading})
	r.loading = true
}

func (r *Recorder) RemoveLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Event{Kind: EventRemoveLoading})
	r.loading = false
}

func (r *Recorder) ClearTranscript() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Event{Kind: EventClear})
	r.transcript = nil
	r.loading = false
}

func (r *Recorder) ShowEmptyState() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Event{Kind: EventEmptyState})
	r.transcript = nil
	r.loading = false
}

func (r *Recorder) SetInputEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Event{Kind: EventInput, Flag: enabled})
	r.inputEnabled = enabled
}

func (r *Recorder) SetUploadVisible(visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Event{Kind: EventUpload, Flag: visible})
	r.uploadVisible = visible
}

func (r *Recorder) RenderList(entries []ListEntry, placeholder string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := append([]ListEntry(nil), entries...)
	r.record(Event{Kind: EventList, Entries: cp, Text: placeholder})
	r.entries = cp
	r.placeholder = placeholder
}

func (r *Recorder) Highlight(fileID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Event{Kind: EventHighlight, FileID: fileID})
	r.highlighted = fileID
}

func (r *Recorder) Prompt(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Event{Kind: EventPrompt, Text: text})
}

// Events returns a copy of the event log.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Transcript returns the messages currently visible.
func (r *Recorder) Transcript() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.transcript...)
}

// Messages returns every message ever appended, across clears.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, e := range r.events {
		if e.Kind == EventMessage {
			out = append(out, e.Message)
		}
	}
	return out
}

// Prompts returns the text of every blocking prompt shown.
func (r *Recorder) Prompts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Kind == EventPrompt {
			out = append(out, e.Text)
		}
	}
	return out
}

func (r *Recorder) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

func (r *Recorder) InputEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inputEnabled
}

func (r *Recorder) UploadVisible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uploadVisible
}

func (r *Recorder) Highlighted() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.highlighted
}

// List returns the last rendered entries and placeholder.
func (r *Recorder) List() ([]ListEntry, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ListEntry(nil), r.entries...), r.placeholder
}
