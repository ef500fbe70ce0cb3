package devserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/docchat-cli/internal/api"
	"github.com/KaramelBytes/docchat-cli/internal/config"
)

func runStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "u", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: expected ErrNotFound, got %v", err)
	}
	for i, id := range []string{"f3", "f1", "f2"} {
		rec := Record{UserID: "u", FileID: id, Filename: fmt.Sprintf("%d.pdf", i), Status: StatusPending}
		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put %s: %v", id, err)
		}
	}
	if err := s.Put(ctx, Record{UserID: "other", FileID: "x", Status: StatusPending}); err != nil {
		t.Fatal(err)
	}

	list, err := s.List(ctx, "u")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, r := range list {
		ids = append(ids, r.FileID)
	}
	if fmt.Sprint(ids) != "[f3 f1 f2]" {
		t.Fatalf("List should keep insert order, got %v", ids)
	}

	err = s.Update(ctx, "u", "f1", func(r *Record) error {
		r.Status = StatusCompleted
		r.ChatHistory = append(r.ChatHistory, api.HistoryEntry{Question: "q", Answer: "a"})
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := s.Get(ctx, "u", "f1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusCompleted || len(got.ChatHistory) != 1 {
		t.Fatalf("update not applied: %+v", got)
	}

	boom := errors.New("boom")
	if err := s.Update(ctx, "u", "f1", func(r *Record) error {
		r.Status = StatusFailed
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Update should return fn error, got %v", err)
	}
	if got, _ := s.Get(ctx, "u", "f1"); got.Status != StatusCompleted {
		t.Fatalf("failed update must not be stored, got %s", got.Status)
	}
	if err := s.Update(ctx, "u", "missing", func(*Record) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update missing: expected ErrNotFound, got %v", err)
	}

	// Replacing a record keeps its list position.
	if err := s.Put(ctx, Record{UserID: "u", FileID: "f3", Status: StatusFailed}); err != nil {
		t.Fatal(err)
	}
	list, _ = s.List(ctx, "u")
	if len(list) != 3 || list[0].FileID != "f3" || list[0].Status != StatusFailed {
		t.Fatalf("unexpected list after replace: %+v", list)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Put(ctx, Record{UserID: "u", FileID: "f", ChatHistory: []api.HistoryEntry{{Question: "q"}}})
	got, _ := s.Get(ctx, "u", "f")
	got.ChatHistory[0].Question = "mutated"
	again, _ := s.Get(ctx, "u", "f")
	if again.ChatHistory[0].Question != "q" {
		t.Fatal("callers must not be able to mutate stored history")
	}
}

func TestRedisStoreContract(t *testing.T) {
	url := os.Getenv("DOCCHAT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("DOCCHAT_TEST_REDIS_URL not set")
	}
	s, err := NewRedisStore(context.Background(), url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	s.prefix = "docchat-test-" + uuid.NewString()
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := s.rdb.Keys(ctx, s.prefix+":*").Result()
		if len(keys) > 0 {
			_ = s.rdb.Del(ctx, keys...).Err()
		}
		_ = s.Close()
	})
	runStoreContract(t, s)
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	if _, err := NewRedisStore(context.Background(), "http://not-redis"); err == nil {
		t.Fatal("expected an error for a non-redis url")
	}
}

func TestMinioObjects(t *testing.T) {
	endpoint := os.Getenv("DOCCHAT_TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("DOCCHAT_TEST_MINIO_ENDPOINT not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	m, err := NewMinioObjects(ctx, config.Minio{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("DOCCHAT_TEST_MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("DOCCHAT_TEST_MINIO_SECRET_KEY"),
		Bucket:    "docchat-test",
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	key := "u_____" + uuid.NewString() + ".txt"
	if ok, err := m.Exists(ctx, key); err != nil || ok {
		t.Fatalf("Exists before upload = %v, %v", ok, err)
	}
	u, err := m.UploadURL(ctx, key)
	if err != nil || u == "" {
		t.Fatalf("UploadURL = %q, %v", u, err)
	}
	if err := m.Put(ctx, key, []byte("hello"), "text/plain"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	b, err := m.Get(ctx, key)
	if err != nil || string(b) != "hello" {
		t.Fatalf("Get = %q, %v", b, err)
	}
	if ok, err := m.Exists(ctx, key); err != nil || !ok {
		t.Fatalf("Exists after upload = %v, %v", ok, err)
	}
}

func TestMemoryObjects(t *testing.T) {
	m := NewMemoryObjects("http://files.test/")
	ctx := context.Background()
	u, _ := m.UploadURL(ctx, "u_____a b.pdf")
	if u != "http://files.test/objects/u_____a%20b.pdf" {
		t.Fatalf("unexpected url %q", u)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
	_ = m.Put(ctx, "k", []byte("v"), "")
	if ok, _ := m.Exists(ctx, "k"); !ok {
		t.Fatal("object should exist after Put")
	}
}
