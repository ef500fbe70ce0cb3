package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveDocument is returned by Ask when no document is bound.
	ErrNoActiveDocument = errors.New("no active document: upload or select a document first")
	// ErrUploadSuppressed is returned by Upload while a document is bound.
	ErrUploadSuppressed = errors.New("a document is already active: start a new chat before uploading")
	// ErrSuperseded is returned by Select when another binding replaced the
	// selection before its history arrived; nothing was rendered.
	ErrSuperseded = errors.New("selection superseded by a newer binding")
)

// CredentialError means the backend refused or failed to issue upload credentials.
type CredentialError struct {
	Filename string
	Err      error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("request upload credentials for %s: %v", e.Filename, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// TransferError means the byte transfer to the granted destination failed.
// The credential is considered consumed; retry from the start.
type TransferError struct {
	FileID string
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s: %v", e.FileID, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// StatusQueryError means a status/history query failed.
type StatusQueryError struct {
	FileID string
	Err    error
}

func (e *StatusQueryError) Error() string {
	return fmt.Sprintf("query status of %s: %v", e.FileID, e.Err)
}

func (e *StatusQueryError) Unwrap() error { return e.Err }

// ChatQueryError means a question could not be answered.
type ChatQueryError struct {
	FileID string
	Err    error
}

func (e *ChatQueryError) Error() string {
	return fmt.Sprintf("ask about %s: %v", e.FileID, e.Err)
}

func (e *ChatQueryError) Unwrap() error { return e.Err }

// ListQueryError means the document list could not be fetched.
type ListQueryError struct {
	Err error
}

func (e *ListQueryError) Error() string { return fmt.Sprintf("list documents: %v", e.Err) }

func (e *ListQueryError) Unwrap() error { return e.Err }
