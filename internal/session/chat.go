package session

import (
	"context"
	"strings"
)

// Dispatcher sends questions against the active document.
type Dispatcher struct {
	backend Backend
	userID  string
	view    Renderer
	state   *State
}

// Ask sends question about the active document and returns the answer.
// A blank question is a no-op. The user turn stays in the transcript even
// when the backend fails.
func (d *Dispatcher) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", nil
	}
	b, ok := d.state.current()
	if !ok {
		d.view.Prompt(msgSelectFirst)
		return "", ErrNoActiveDocument
	}

	d.view.AppendMessage(Message{Role: RoleUser, Text: question})
	d.view.ShowLoading()
	resp, err := d.backend.Chat(ctx, d.userID, b.doc.FileID, question)
	d.view.RemoveLoading()
	if err != nil {
		if d.state.holds(b) {
			d.view.AppendMessage(Message{Role: RoleAssistant, Text: warnPrefix + msgAnswerFailed})
		}
		return "", &ChatQueryError{FileID: b.doc.FileID, Err: err}
	}
	if d.state.holds(b) {
		d.view.AppendMessage(Message{Role: RoleAssistant, Text: resp.Answer})
	}
	return resp.Answer, nil
}
