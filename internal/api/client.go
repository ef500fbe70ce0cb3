package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultUploadContentType is sent with every byte transfer; presigned
// upload URLs are signed for this exact value.
const DefaultUploadContentType = "application/pdf"

// Client talks to the document backend. It performs no retries: every
// failure is reported to the caller, which decides what to do.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	contentType string
	debug       io.Writer
}

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string, httpTimeout time.Duration, uploadContentType string) *Client {
	if httpTimeout <= 0 {
		httpTimeout = 30 * time.Second
	}
	if uploadContentType == "" {
		uploadContentType = DefaultUploadContentType
	}
	return &Client{
		httpClient:  &http.Client{Timeout: httpTimeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		contentType: uploadContentType,
	}
}

// SetDebug enables request tracing to w. A nil writer disables it.
func (c *Client) SetDebug(w io.Writer) { c.debug = w }

// BaseURL returns the backend root this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// ListFiles fetches every document known for userID.
func (c *Client) ListFiles(ctx context.Context, userID string) (*ListResponse, error) {
	q := url.Values{"user_id": {userID}}
	var out ListResponse
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/list?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestUploadURL asks the backend for single-use transfer credentials.
func (c *Client) RequestUploadURL(ctx context.Context, userID, filename string) (*UploadURLResponse, error) {
	var out UploadURLResponse
	err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/upload-url", UploadURLRequest{UserID: userID, Filename: filename}, &out)
	if err != nil {
		return nil, err
	}
	if out.UploadURL == "" || out.FileID == "" {
		return nil, errors.New("upload-url: response missing upload_url or file_id")
	}
	return &out, nil
}

// UploadFile PUTs the raw bytes to a URL obtained from RequestUploadURL.
// size may be -1 when unknown.
func (c *Client) UploadFile(ctx context.Context, uploadURL string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if size >= 0 {
		req.ContentLength = size
	}
	req.Header.Set("Content-Type", c.contentType)
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	return nil
}

// FetchSummary queries the processing status, summary and stored chat history.
func (c *Client) FetchSummary(ctx context.Context, userID, fileID string) (*SummaryResponse, error) {
	q := url.Values{"user_id": {userID}, "file_id": {fileID}}
	var out SummaryResponse
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/summary?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat asks one question about fileID.
func (c *Client) Chat(ctx context.Context, userID, fileID, question string) (*ChatResponse, error) {
	var out ChatResponse
	err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/chat", ChatRequest{UserID: userID, FileID: fileID, Question: question}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.debug != nil {
		if err != nil {
			fmt.Fprintf(c.debug, "→ %s %s: %v\n", req.Method, redactQuery(req.URL), err)
		} else {
			fmt.Fprintf(c.debug, "→ %s %s: %s (%s)\n", req.Method, redactQuery(req.URL), resp.Status, time.Since(start).Round(time.Millisecond))
		}
	}
	if err != nil {
		return nil, &UnreachableError{Host: req.URL.Host, Err: err}
	}
	return resp, nil
}

// decodeAPIError maps a non-2xx response to *APIError. The backend returns
// either a JSON object with "message"/"error" or a bare JSON string.
func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: extractRequestID(resp)}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err == nil {
		apiErr.Raw = raw
		switch v := raw["error"].(type) {
		case string:
			apiErr.Message = v
		case map[string]any:
			if msg, ok := v["message"].(string); ok {
				apiErr.Message = msg
			}
		}
		if msg, ok := raw["message"].(string); ok && apiErr.Message == "" {
			apiErr.Message = msg
		}
		return apiErr
	}
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		apiErr.Message = s
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

// extractRequestID pulls a best-effort request ID from common headers.
func extractRequestID(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	for _, k := range []string{"X-Request-Id", "X-Amzn-Requestid", "X-Amz-Request-Id"} {
		if v := resp.Header.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// redactQuery hides presigned query strings in debug output.
func redactQuery(u *url.URL) string {
	if u == nil {
		return ""
	}
	if strings.Contains(u.RawQuery, "X-Amz-Signature") {
		cp := *u
		cp.RawQuery = "<presigned>"
		return cp.String()
	}
	return u.String()
}
