package api

import "fmt"

// APIError represents any non-2xx response from the backend.
type APIError struct {
	StatusCode int            `json:"-"`
	Message    string         `json:"message,omitempty"`
	Raw        map[string]any `json:"-"`
	RequestID  string         `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		if e.RequestID != "" {
			return fmt.Sprintf("api error: status=%d request_id=%s message=%s", e.StatusCode, e.RequestID, e.Message)
		}
		return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("api error: status=%d request_id=%s", e.StatusCode, e.RequestID)
	}
	return fmt.Sprintf("api error: status=%d", e.StatusCode)
}

// UnreachableError indicates the request never produced a response
// (dial failure, reset connection, client timeout).
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "unreachable"
	}
	if e.Host != "" {
		return fmt.Sprintf("backend unreachable at %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("backend unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }
