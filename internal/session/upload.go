package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is a named byte source to upload. Size is -1 when unknown.
type File struct {
	Name string
	Body io.Reader
	Size int64
}

// OpenFile opens a local file for upload. The caller must Close the returned file.
func OpenFile(path string) (File, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, nil, fmt.Errorf("open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return File{}, nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return File{}, nil, fmt.Errorf("%s is a directory", path)
	}
	return File{Name: filepath.Base(path), Body: f, Size: info.Size()}, f, nil
}

// Uploader runs the two-phase upload: credentials, then byte transfer.
type Uploader struct {
	backend Backend
	userID  string
	view    Renderer
	state   *State
	poller  *Poller
	lists   *Lister
	clock   Clock
}

// BeginUpload uploads f on behalf of the session user. On success the new
// document is bound, polling is armed and the list is refreshed.
func (u *Uploader) BeginUpload(ctx context.Context, f File) (*Document, error) {
	if _, bound := u.state.Active(); bound {
		return nil, ErrUploadSuppressed
	}
	u.view.AppendMessage(Message{Role: RoleUser, Text: fmt.Sprintf("%s uploaded.", f.Name)})
	u.view.ShowLoading()

	cred, err := u.backend.RequestUploadURL(ctx, u.userID, f.Name)
	if err != nil {
		u.fail()
		return nil, &CredentialError{Filename: f.Name, Err: err}
	}
	doc := &Document{
		FileID:     cred.FileID,
		Filename:   f.Name,
		Status:     StatusPending,
		UploadDate: u.clock.Now(),
	}
	if err := u.backend.UploadFile(ctx, cred.UploadURL, f.Body, f.Size); err != nil {
		u.fail()
		return nil, &TransferError{FileID: cred.FileID, Err: err}
	}

	u.view.RemoveLoading()
	u.view.AppendMessage(Message{Role: RoleAssistant, Text: msgUploadedWaiting})
	u.state.Bind(doc.FileID, doc.Filename)
	u.poller.Start(ctx, doc.FileID)
	// A list failure renders its own placeholder and does not fail the upload.
	_, _ = u.lists.Refresh(ctx)
	return doc, nil
}

func (u *Uploader) fail() {
	u.view.RemoveLoading()
	u.view.AppendMessage(Message{Role: RoleAssistant, Text: warnPrefix + msgUploadFailed})
}
