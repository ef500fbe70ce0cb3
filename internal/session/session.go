package session

import (
	"context"
	"time"
)

// Options tunes polling.
type Options struct {
	PollInterval    time.Duration
	PollMaxAttempts int
}

// DefaultOptions returns the stock polling parameters.
func DefaultOptions() Options {
	return Options{PollInterval: DefaultPollInterval, PollMaxAttempts: DefaultPollMaxAttempts}
}

// Session wires the upload, polling, chat and list components around one
// user and one active-document binding.
type Session struct {
	userID string
	view   Renderer
	state  *State

	Uploads *Uploader
	Poller  *Poller
	Chat    *Dispatcher
	Lists   *Lister
}

// New builds a session for userID. A nil clock means the system clock.
func New(userID string, backend Backend, view Renderer, clock Clock, opts Options) *Session {
	if clock == nil {
		clock = SystemClock()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.PollMaxAttempts <= 0 {
		opts.PollMaxAttempts = DefaultPollMaxAttempts
	}
	view = serialize(view)
	state := newState(view)
	lists := &Lister{backend: backend, userID: userID, view: view, state: state}
	poller := &Poller{
		backend:     backend,
		userID:      userID,
		view:        view,
		state:       state,
		clock:       clock,
		interval:    opts.PollInterval,
		maxAttempts: opts.PollMaxAttempts,
		onComplete: func(ctx context.Context) {
			_, _ = lists.Refresh(ctx)
		},
	}
	return &Session{
		userID: userID,
		view:   view,
		state:  state,
		Uploads: &Uploader{
			backend: backend,
			userID:  userID,
			view:    view,
			state:   state,
			poller:  poller,
			lists:   lists,
			clock:   clock,
		},
		Poller: poller,
		Chat:   &Dispatcher{backend: backend, userID: userID, view: view, state: state},
		Lists:  lists,
	}
}

// UserID returns the anonymous user the session acts for.
func (s *Session) UserID() string { return s.userID }

// State exposes the active-document binding.
func (s *Session) State() *State { return s.state }

// Active returns the bound document, if any.
func (s *Session) Active() (ActiveDocument, bool) { return s.state.Active() }

// Upload uploads f and starts polling for its completion.
func (s *Session) Upload(ctx context.Context, f File) (*Document, error) {
	return s.Uploads.BeginUpload(ctx, f)
}

// Ask sends a question about the active document.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	return s.Chat.Ask(ctx, question)
}

// Refresh re-fetches and renders the document list.
func (s *Session) Refresh(ctx context.Context) ([]Document, error) {
	return s.Lists.Refresh(ctx)
}

// Select switches to a previously uploaded document and loads its history.
func (s *Session) Select(ctx context.Context, fileID, filename string) (*Document, error) {
	return s.Lists.Select(ctx, fileID, filename)
}

// Bind switches to fileID without loading its history.
func (s *Session) Bind(fileID, filename string) { s.state.Bind(fileID, filename) }

// NewChat forgets the active document, stops polling and resets the view.
func (s *Session) NewChat() {
	s.Poller.Stop()
	s.state.Unbind()
}

// WaitForProcessing blocks until the current polling run ends.
func (s *Session) WaitForProcessing(ctx context.Context) (Outcome, error) {
	return s.Poller.Wait(ctx)
}

// Close stops any background polling.
func (s *Session) Close() { s.Poller.Stop() }
