package session_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/KaramelBytes/docchat-cli/internal/api"
	"github.com/KaramelBytes/docchat-cli/internal/session"
)

// fakeBackend scripts backend responses through optional hooks.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	list    func() (*api.ListResponse, error)
	cred    func(filename string) (*api.UploadURLResponse, error)
	upload  func(url string, body []byte) error
	summary func(fileID string, n int) (*api.SummaryResponse, error)
	chat    func(ctx context.Context, fileID, question string) (*api.ChatResponse, error)

	summaryCalls map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: map[string]int{}, summaryCalls: map[string]int{}}
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend) inc(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeBackend) ListFiles(ctx context.Context, userID string) (*api.ListResponse, error) {
	f.inc("list")
	if f.list != nil {
		return f.list()
	}
	return &api.ListResponse{}, nil
}

func (f *fakeBackend) RequestUploadURL(ctx context.Context, userID, filename string) (*api.UploadURLResponse, error) {
	f.inc("cred")
	if f.cred != nil {
		return f.cred(filename)
	}
	return &api.UploadURLResponse{UploadURL: "https://store.example/" + filename, FileID: "f1"}, nil
}

func (f *fakeBackend) UploadFile(ctx context.Context, uploadURL string, body io.Reader, size int64) error {
	f.inc("upload")
	b, _ := io.ReadAll(body)
	if f.upload != nil {
		return f.upload(uploadURL, b)
	}
	return nil
}

func (f *fakeBackend) FetchSummary(ctx context.Context, userID, fileID string) (*api.SummaryResponse, error) {
	f.inc("summary")
	f.mu.Lock()
	f.summaryCalls[fileID]++
	n := f.summaryCalls[fileID]
	f.mu.Unlock()
	if f.summary != nil {
		return f.summary(fileID, n)
	}
	return &api.SummaryResponse{Status: "PROCESSING"}, nil
}

func (f *fakeBackend) Chat(ctx context.Context, userID, fileID, question string) (*api.ChatResponse, error) {
	f.inc("chat")
	if f.chat != nil {
		return f.chat(ctx, fileID, question)
	}
	return &api.ChatResponse{Answer: "answer to " + question}, nil
}

// manualClock hands out tickers that only fire when the test says so.
type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) NewTicker(d time.Duration) session.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{c: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *manualClock) ticker(i int) *manualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 {
		i = len(c.tickers) + i
	}
	if i < 0 || i >= len(c.tickers) {
		return nil
	}
	return c.tickers[i]
}

type manualTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *manualTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// fire delivers one tick and reports whether the poll loop accepted it.
func (t *manualTicker) fire() bool {
	select {
	case t.c <- time.Now():
		return true
	case <-time.After(200 * time.Millisecond):
		return false
	}
}

func newTestSession(t *testing.T, b *fakeBackend, maxAttempts int) (*session.Session, *session.Recorder, *manualClock) {
	t.Helper()
	rec := session.NewRecorder()
	clock := newManualClock()
	s := session.New("user_1", b, rec, clock, session.Options{PollInterval: time.Second, PollMaxAttempts: maxAttempts})
	t.Cleanup(s.Close)
	return s, rec, clock
}

func waitOutcome(t *testing.T, s *session.Session) session.Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := s.WaitForProcessing(ctx)
	if err != nil {
		t.Fatalf("poll run did not finish: %v (state=%s)", err, out.State)
	}
	return out
}

func assistantMessages(msgs []session.Message) []string {
	var out []string
	for _, m := range msgs {
		if m.Role == session.RoleAssistant {
			out = append(out, m.Text)
		}
	}
	return out
}
