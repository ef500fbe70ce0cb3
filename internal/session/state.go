package session

import "sync"

// ActiveDocument is the binding chat questions are sent against.
type ActiveDocument struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
}

// State holds the single active-document binding. Chat input is enabled
// exactly while a document is bound.
type State struct {
	mu     sync.Mutex
	active *ActiveDocument
	gen    uint64
	view   Renderer
}

// binding identifies one Bind call. Re-binding the same document yields a
// new binding, so responses from before the rebind are still recognized as stale.
type binding struct {
	doc ActiveDocument
	gen uint64
}

func newState(view Renderer) *State {
	return &State{view: view}
}

// Bind makes fileID the active document, replacing any previous binding.
func (s *State) Bind(fileID, filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = &ActiveDocument{FileID: fileID, Filename: filename}
	s.gen++
	s.view.SetInputEnabled(true)
	s.view.SetUploadVisible(false)
	s.view.Highlight(fileID)
}

// Unbind clears the binding and resets the view to the empty state.
func (s *State) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
	s.gen++
	s.view.SetInputEnabled(false)
	s.view.SetUploadVisible(true)
	s.view.ShowEmptyState()
	s.view.Highlight("")
}

// Active returns the current binding, if any.
func (s *State) Active() (ActiveDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ActiveDocument{}, false
	}
	return *s.active, true
}

// IsActive reports whether fileID is still the bound document. Responses
// captured for another document must not be rendered.
func (s *State) IsActive(fileID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil && s.active.FileID == fileID
}

func (s *State) current() (binding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return binding{}, false
	}
	return binding{doc: *s.active, gen: s.gen}, true
}

func (s *State) holds(b binding) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil && s.gen == b.gen
}
