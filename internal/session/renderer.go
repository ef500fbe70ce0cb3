package session

import "sync"

// ListEntry is one rendered row of the document list.
type ListEntry struct {
	FileID   string `json:"file_id"`
	Title    string `json:"title"`
	Glyph    string `json:"glyph"`
	Status   Status `json:"status"`
	Selected bool   `json:"selected"`
}

// Renderer consumes the side effects of session transitions. Implementations
// draw them (render.Terminal) or record them (Recorder); the session never
// reads anything back.
type Renderer interface {
	AppendMessage(m Message)
	ShowLoading()
	RemoveLoading()
	// ClearTranscript empties the transcript view.
	ClearTranscript()
	// ShowEmptyState replaces the transcript with the "no document" placeholder.
	ShowEmptyState()
	SetInputEnabled(enabled bool)
	SetUploadVisible(visible bool)
	// RenderList replaces the document list. placeholder is non-empty when
	// entries is empty or the list could not be loaded.
	RenderList(entries []ListEntry, placeholder string)
	// Highlight marks fileID as selected in the list; "" clears the selection.
	Highlight(fileID string)
	// Prompt shows a blocking notice that needs user acknowledgement.
	Prompt(text string)
}

// serialRenderer serializes calls from the poll goroutine and the caller.
type serialRenderer struct {
	mu sync.Mutex
	r  Renderer
}

func serialize(r Renderer) Renderer {
	if s, ok := r.(*serialRenderer); ok {
		return s
	}
	return &serialRenderer{r: r}
}

func (s *serialRenderer) AppendMessage(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.AppendMessage(m)
}

func (s *serialRenderer) ShowLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.ShowLoading()
}

func (s *serialRenderer) RemoveLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.RemoveLoading()
}

func (s *serialRenderer) ClearTranscript() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.ClearTranscript()
}

func (s *serialRenderer) ShowEmptyState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.ShowEmptyState()
}

func (s *serialRenderer) SetInputEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.SetInputEnabled(enabled)
}

func (s *serialRenderer) SetUploadVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.SetUploadVisible(visible)
}

func (s *serialRenderer) RenderList(entries []ListEntry, placeholder string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.RenderList(entries, placeholder)
}

func (s *serialRenderer) Highlight(fileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Highlight(fileID)
}

func (s *serialRenderer) Prompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Prompt(text)
}

// user-visible texts
const (
	msgUploadFailed      = "An error occurred while uploading the file. Please try again."
	msgUploadedWaiting   = "File uploaded. Generating the summary..."
	msgSummaryFallback   = "Summary is ready."
	msgProcessingFailed  = "An error occurred while processing the document."
	msgPollTimeout       = "Processing timed out. Please check again later."
	msgStatusCheckFailed = "An error occurred while checking the status."
	msgAnswerFailed      = "An error occurred while generating the answer."
	msgSelectFirst       = "Please upload or select a document first."
	msgListEmpty         = "No uploaded documents"
	msgListUnavailable   = "Unable to load the document list"
	summaryHeader        = "[Summary]\n"
	warnPrefix           = "⚠ "
)
