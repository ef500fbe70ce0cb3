package session

import (
	"context"
	"io"
	"time"

	"github.com/KaramelBytes/docchat-cli/internal/api"
)

// Backend is the set of remote operations the session drives.
// *api.Client satisfies it.
type Backend interface {
	ListFiles(ctx context.Context, userID string) (*api.ListResponse, error)
	RequestUploadURL(ctx context.Context, userID, filename string) (*api.UploadURLResponse, error)
	UploadFile(ctx context.Context, uploadURL string, body io.Reader, size int64) error
	FetchSummary(ctx context.Context, userID, fileID string) (*api.SummaryResponse, error)
	Chat(ctx context.Context, userID, fileID, question string) (*api.ChatResponse, error)
}

// Ticker delivers poll ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock supplies time and tickers so polling can be driven manually in tests.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// SystemClock is the wall clock.
func SystemClock() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) NewTicker(d time.Duration) Ticker { return systemTicker{time.NewTicker(d)} }

type systemTicker struct{ t *time.Ticker }

func (s systemTicker) C() <-chan time.Time { return s.t.C }

func (s systemTicker) Stop() { s.t.Stop() }
