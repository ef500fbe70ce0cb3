package devserver

import (
	"context"
	"errors"
	"sync"

	"github.com/KaramelBytes/docchat-cli/internal/api"
)

// Processing states written to the document table.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// uploadDateLayout matches the backend's upload_date strings.
const uploadDateLayout = "2006-01-02 15:04:05"

// Record is one row of the document table, keyed by (UserID, FileID).
type Record struct {
	UserID      string             `json:"user_id"`
	FileID      string             `json:"file_id"`
	Filename    string             `json:"filename"`
	Status      string             `json:"status"`
	UploadDate  string             `json:"upload_date"`
	Summary     string             `json:"summary,omitempty"`
	Text        string             `json:"text,omitempty"`
	ChatHistory []api.HistoryEntry `json:"chat_history,omitempty"`
}

func (r Record) clone() Record {
	r.ChatHistory = append([]api.HistoryEntry(nil), r.ChatHistory...)
	return r
}

// ErrNotFound is returned for unknown (user, file) pairs.
var ErrNotFound = errors.New("document not found")

// Store is the document table.
type Store interface {
	// Put inserts or replaces rec. Listing order is first-insert order.
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, userID, fileID string) (Record, error)
	List(ctx context.Context, userID string) ([]Record, error)
	// Update applies fn to the stored record atomically.
	Update(ctx context.Context, userID, fileID string, fn func(*Record) error) error
	Close() error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu    sync.Mutex
	docs  map[string]Record
	order map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string]Record{}, order: map[string][]string{}}
}

func memKey(userID, fileID string) string { return userID + "\x00" + fileID }

func (s *MemoryStore) Put(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memKey(rec.UserID, rec.FileID)
	if _, ok := s.docs[k]; !ok {
		s.order[rec.UserID] = append(s.order[rec.UserID], rec.FileID)
	}
	s.docs[k] = rec.clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID, fileID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.docs[memKey(userID, fileID)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec.clone(), nil
}

func (s *MemoryStore) List(_ context.Context, userID string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.order[userID]
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.docs[memKey(userID, id)].clone())
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, userID, fileID string, fn func(*Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memKey(userID, fileID)
	rec, ok := s.docs[k]
	if !ok {
		return ErrNotFound
	}
	rec = rec.clone()
	if err := fn(&rec); err != nil {
		return err
	}
	s.docs[k] = rec
	return nil
}

func (s *MemoryStore) Close() error { return nil }
