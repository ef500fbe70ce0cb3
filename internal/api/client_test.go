package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"testing"
	"time"
)

type ipv4Server struct {
	URL string
	srv *http.Server
	ln  net.Listener
}

func newIPv4Server(t *testing.T, handler http.Handler) *ipv4Server {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	srv := &http.Server{Handler: handler}
	s := &ipv4Server{
		URL: "http://" + ln.Addr().String(),
		srv: srv,
		ln:  ln,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("test server serve: %v", err))
		}
	}()
	return s
}

func (s *ipv4Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}

func TestListFilesEscapesUserID(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/list" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("user_id"); got != "user 1&x" {
			t.Errorf("user_id = %q", got)
		}
		_ = json.NewEncoder(w).Encode(ListResponse{Files: []FileSummary{
			{FileID: "f1", Filename: "a.pdf", Status: "COMPLETED", UploadDate: "2024-05-01 10:00:00"},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", 2*time.Second, "")
	resp, err := c.ListFiles(context.Background(), "user 1&x")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(resp.Files) != 1 || resp.Files[0].FileID != "f1" {
		t.Fatalf("unexpected files: %+v", resp.Files)
	}
}

func TestUploadFlowSendsExpectedShapes(t *testing.T) {
	var put []byte
	var putType string
	var srvURL string
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/upload-url":
			var req UploadURLRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode: %v", err)
			}
			if req.UserID != "u1" || req.Filename != "report.pdf" {
				t.Errorf("unexpected request: %+v", req)
			}
			_ = json.NewEncoder(w).Encode(UploadURLResponse{UploadURL: srvURL + "/bucket/f1", FileID: "f1"})
		case r.Method == http.MethodPut && r.URL.Path == "/bucket/f1":
			put, _ = io.ReadAll(r.Body)
			putType = r.Header.Get("Content-Type")
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	c := NewClient(srv.URL, 2*time.Second, "")
	ctx := context.Background()
	cred, err := c.RequestUploadURL(ctx, "u1", "report.pdf")
	if err != nil {
		t.Fatalf("RequestUploadURL: %v", err)
	}
	body := []byte("%PDF-1.4 fake")
	if err := c.UploadFile(ctx, cred.UploadURL, bytes.NewReader(body), int64(len(body))); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if !bytes.Equal(put, body) {
		t.Fatalf("server got %q", put)
	}
	if putType != DefaultUploadContentType {
		t.Fatalf("content type = %q", putType)
	}
}

func TestRequestUploadURLRejectsIncompleteResponse(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"file_id": "f1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, "")
	if _, err := c.RequestUploadURL(context.Background(), "u1", "a.pdf"); err == nil {
		t.Fatalf("expected error for missing upload_url")
	}
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Amzn-Requestid", "req-42")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode("Error: table missing")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, "")
	_, err := c.FetchSummary(context.Background(), "u1", "f1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError || apiErr.Message != "Error: table missing" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if !strings.Contains(err.Error(), "req-42") {
		t.Fatalf("expected request id in error, got %v", err)
	}
}

func TestAPIErrorReadsObjectBody(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "question required"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, "")
	_, err := c.Chat(context.Background(), "u1", "f1", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "question required" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChatAndSummaryDecode(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/summary":
			if r.URL.Query().Get("file_id") != "u1_____x.pdf" {
				t.Errorf("file_id = %q", r.URL.Query().Get("file_id"))
			}
			_ = json.NewEncoder(w).Encode(SummaryResponse{
				Status:      "COMPLETED",
				SummaryText: "S",
				ChatHistory: []HistoryEntry{{Question: "Q1", Answer: "A1"}},
			})
		case "/chat":
			var req ChatRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(ChatResponse{Answer: "echo: " + req.Question})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, "")
	ctx := context.Background()
	sum, err := c.FetchSummary(ctx, "u1", "u1_____x.pdf")
	if err != nil {
		t.Fatalf("FetchSummary: %v", err)
	}
	if sum.Status != "COMPLETED" || sum.SummaryText != "S" || len(sum.ChatHistory) != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	ans, err := c.Chat(ctx, "u1", "f1", "hi")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if ans.Answer != "echo: hi" {
		t.Fatalf("unexpected answer: %q", ans.Answer)
	}
}

func TestUnreachableBackend(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test: cannot open local listener (%v)", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	c := NewClient("http://"+addr, 500*time.Millisecond, "")
	_, err = c.ListFiles(context.Background(), "u1")
	var ue *UnreachableError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UnreachableError, got %T: %v", err, err)
	}
	if ue.Host != addr {
		t.Fatalf("host = %q, want %q", ue.Host, addr)
	}
}

func TestDebugTraceRedactsPresignedQuery(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var trace bytes.Buffer
	c := NewClient(srv.URL, time.Second, "")
	c.SetDebug(&trace)
	if err := c.UploadFile(context.Background(), srv.URL+"/b/k?X-Amz-Signature=secret", strings.NewReader("x"), 1); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if strings.Contains(trace.String(), "secret") {
		t.Fatalf("signature leaked into trace: %s", trace.String())
	}
	if !strings.Contains(trace.String(), "PUT") {
		t.Fatalf("expected PUT in trace: %s", trace.String())
	}
}
