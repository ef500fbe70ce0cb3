package devserver

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/KaramelBytes/docchat-cli/internal/extract"
	"github.com/KaramelBytes/docchat-cli/internal/utils"
)

const (
	summaryLines = 3
	// maxTextRunes caps the stored text used for answers.
	maxTextRunes = 15000
)

// Processor turns uploaded objects into summarized documents in the background.
type Processor struct {
	store   Store
	objects Objects
	delay   time.Duration
	logger  *log.Logger
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]struct{}
}

func newProcessor(store Store, objects Objects, delay time.Duration, logger *log.Logger, now func() time.Time) *Processor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Processor{
		store:    store,
		objects:  objects,
		delay:    delay,
		logger:   logger,
		now:      now,
		ctx:      ctx,
		cancel:   cancel,
		inflight: map[string]struct{}{},
	}
}

// Start marks the document PROCESSING and schedules extraction. It reports
// false when the document is already being processed.
func (p *Processor) Start(userID, fileID string) bool {
	key := memKey(userID, fileID)
	p.mu.Lock()
	if _, busy := p.inflight[key]; busy || p.ctx.Err() != nil {
		p.mu.Unlock()
		return false
	}
	p.inflight[key] = struct{}{}
	p.wg.Add(1)
	p.mu.Unlock()

	err := p.store.Update(p.ctx, userID, fileID, func(r *Record) error {
		r.Status = StatusProcessing
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		// Bytes arrived without a prior /upload-url call.
		err = p.store.Put(p.ctx, Record{
			UserID:     userID,
			FileID:     fileID,
			Filename:   fileID,
			Status:     StatusProcessing,
			UploadDate: p.now().Format(uploadDateLayout),
		})
	}
	if err != nil {
		p.logger.Printf("processing %s: %v", fileID, err)
		p.finish(key)
		return false
	}
	go p.run(userID, fileID, key)
	return true
}

func (p *Processor) finish(key string) {
	p.mu.Lock()
	delete(p.inflight, key)
	p.mu.Unlock()
	p.wg.Done()
}

func (p *Processor) run(userID, fileID, key string) {
	defer p.finish(key)
	if p.delay > 0 {
		t := time.NewTimer(p.delay)
		defer t.Stop()
		select {
		case <-p.ctx.Done():
			return
		case <-t.C:
		}
	}

	status, summary, text := StatusFailed, "", ""
	rec, err := p.store.Get(p.ctx, userID, fileID)
	if err == nil {
		var data []byte
		data, err = p.objects.Get(p.ctx, fileID)
		if err == nil {
			text, err = extract.Text(rec.Filename, data)
		}
	}
	switch {
	case err != nil:
		p.logger.Printf("processing %s failed: %v", fileID, err)
	case strings.TrimSpace(text) == "":
		p.logger.Printf("processing %s failed: no extractable text", fileID)
	default:
		status = StatusCompleted
		summary = utils.FirstLines(text, summaryLines)
		text = utils.TruncateRunes(text, maxTextRunes)
	}

	err = p.store.Update(p.ctx, userID, fileID, func(r *Record) error {
		r.Status = status
		r.Summary = summary
		if status == StatusCompleted {
			r.Text = text
		}
		return nil
	})
	if err != nil {
		p.logger.Printf("processing %s: store result: %v", fileID, err)
	}
}

// Wait blocks until no document is being processed.
func (p *Processor) Wait() { p.wg.Wait() }

// Close abandons pending work and waits for workers to exit.
func (p *Processor) Close() {
	p.mu.Lock()
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()
}
