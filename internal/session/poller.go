package session

import (
	"context"
	"sync"
	"time"
)

// Default polling parameters: 40 attempts every 3s bounds a run to two minutes.
const (
	DefaultPollInterval    = 3 * time.Second
	DefaultPollMaxAttempts = 40
)

// PollState is the lifecycle of one polling run.
type PollState int

const (
	PollIdle PollState = iota
	PollPolling
	PollSucceeded
	PollFailed
	PollTimedOut
	// PollCancelled marks a run stopped by Stop, a replacing Start, or its context.
	PollCancelled
)

func (s PollState) String() string {
	switch s {
	case PollIdle:
		return "idle"
	case PollPolling:
		return "polling"
	case PollSucceeded:
		return "completed"
	case PollFailed:
		return "failed"
	case PollTimedOut:
		return "timed_out"
	case PollCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run has ended.
func (s PollState) Terminal() bool { return s >= PollSucceeded }

// Outcome describes how a polling run ended.
type Outcome struct {
	FileID      string
	State       PollState
	Attempts    int
	SummaryText string
	// Err is the last status-query error seen, if any.
	Err error
}

// Poller polls the processing status of at most one document at a time.
type Poller struct {
	backend     Backend
	userID      string
	view        Renderer
	state       *State
	clock       Clock
	interval    time.Duration
	maxAttempts int
	// onComplete runs after a successful run, before Wait returns.
	onComplete func(ctx context.Context)

	mu  sync.Mutex
	run *pollRun
}

type pollRun struct {
	fileID string
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	outcome Outcome
}

func (r *pollRun) snapshot() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}

func (r *pollRun) tick() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcome.Attempts++
	return r.outcome.Attempts
}

func (r *pollRun) set(fn func(o *Outcome)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.outcome)
}

// Start begins polling fileID. A run already in progress is cancelled and
// fully stopped before the new one is armed.
func (p *Poller) Start(ctx context.Context, fileID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	r := &pollRun{
		fileID:  fileID,
		cancel:  cancel,
		done:    make(chan struct{}),
		outcome: Outcome{FileID: fileID, State: PollPolling},
	}
	p.run = r
	t := p.clock.NewTicker(p.interval)
	go p.loop(runCtx, r, t)
}

// Stop cancels the current run, if any, and waits for its goroutine to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	if p.run == nil {
		return
	}
	p.run.cancel()
	<-p.run.done
}

// State returns the state of the current or most recent run.
func (p *Poller) State() PollState {
	p.mu.Lock()
	r := p.run
	p.mu.Unlock()
	if r == nil {
		return PollIdle
	}
	return r.snapshot().State
}

// Attempts returns the number of ticks handled by the current or most recent run.
func (p *Poller) Attempts() int {
	p.mu.Lock()
	r := p.run
	p.mu.Unlock()
	if r == nil {
		return 0
	}
	return r.snapshot().Attempts
}

// Wait blocks until the current run ends or ctx is done.
func (p *Poller) Wait(ctx context.Context) (Outcome, error) {
	p.mu.Lock()
	r := p.run
	p.mu.Unlock()
	if r == nil {
		return Outcome{State: PollIdle}, nil
	}
	select {
	case <-r.done:
		return r.snapshot(), nil
	case <-ctx.Done():
		return r.snapshot(), ctx.Err()
	}
}

func (p *Poller) loop(ctx context.Context, r *pollRun, t Ticker) {
	defer close(r.done)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			r.set(func(o *Outcome) { o.State = PollCancelled })
			return
		case <-t.C():
		}
		if p.handleTick(ctx, r, t) {
			return
		}
	}
}

// handleTick performs one status query and reports whether the run ended.
func (p *Poller) handleTick(ctx context.Context, r *pollRun, t Ticker) bool {
	attempts := r.tick()
	resp, err := p.backend.FetchSummary(ctx, p.userID, r.fileID)
	if ctx.Err() != nil {
		r.set(func(o *Outcome) { o.State = PollCancelled })
		return true
	}
	if err != nil {
		r.set(func(o *Outcome) { o.Err = &StatusQueryError{FileID: r.fileID, Err: err} })
		if attempts >= p.maxAttempts {
			t.Stop()
			r.set(func(o *Outcome) { o.State = PollTimedOut })
			p.notify(r.fileID, warnPrefix+msgStatusCheckFailed)
			return true
		}
		return false
	}

	switch Status(resp.Status) {
	case StatusCompleted:
		t.Stop()
		r.set(func(o *Outcome) {
			o.State = PollSucceeded
			o.SummaryText = resp.SummaryText
		})
		text := resp.SummaryText
		if text == "" {
			text = msgSummaryFallback
		}
		p.notify(r.fileID, text)
		if p.onComplete != nil {
			p.onComplete(ctx)
		}
		return true
	case StatusFailed:
		t.Stop()
		r.set(func(o *Outcome) { o.State = PollFailed })
		p.notify(r.fileID, warnPrefix+msgProcessingFailed)
		return true
	}
	if attempts >= p.maxAttempts {
		t.Stop()
		r.set(func(o *Outcome) { o.State = PollTimedOut })
		p.notify(r.fileID, warnPrefix+msgPollTimeout)
		return true
	}
	return false
}

// notify renders a terminal message unless the session has moved to another document.
func (p *Poller) notify(fileID, text string) {
	if !p.state.IsActive(fileID) {
		return
	}
	p.view.AppendMessage(Message{Role: RoleAssistant, Text: text})
}
