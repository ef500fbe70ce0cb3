package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/KaramelBytes/docchat-cli/internal/api"
	"github.com/KaramelBytes/docchat-cli/internal/utils"
)

// TitleLimit is the number of runes of a filename shown in the list.
const TitleLimit = 25

// Lister keeps the document list in sync with the backend and rehydrates
// transcripts of selected documents.
type Lister struct {
	backend Backend
	userID  string
	view    Renderer
	state   *State

	mu   sync.Mutex
	last []Document
}

// DisplayTitle is the list label for a filename.
func DisplayTitle(filename string) string {
	return utils.TruncateRunes(filename, TitleLimit)
}

// SortByUploadDate orders docs most recent first. Equal dates keep the
// server order.
func SortByUploadDate(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].UploadDate.After(docs[j].UploadDate)
	})
}

func documentsFrom(files []api.FileSummary) []Document {
	docs := make([]Document, 0, len(files))
	for _, f := range files {
		docs = append(docs, Document{
			FileID:     f.FileID,
			Filename:   f.Filename,
			Status:     Status(f.Status),
			UploadDate: ParseUploadDate(f.UploadDate),
		})
	}
	return docs
}

// Fetch returns the sorted document list without rendering it.
func (l *Lister) Fetch(ctx context.Context) ([]Document, error) {
	resp, err := l.backend.ListFiles(ctx, l.userID)
	if err != nil {
		return nil, &ListQueryError{Err: err}
	}
	docs := documentsFrom(resp.Files)
	SortByUploadDate(docs)
	l.mu.Lock()
	l.last = docs
	l.mu.Unlock()
	return docs, nil
}

// Refresh fetches, sorts and renders the document list.
func (l *Lister) Refresh(ctx context.Context) ([]Document, error) {
	docs, err := l.Fetch(ctx)
	if err != nil {
		l.view.RenderList(nil, msgListUnavailable)
		return nil, err
	}
	if len(docs) == 0 {
		l.view.RenderList(nil, msgListEmpty)
		return docs, nil
	}
	active, _ := l.state.Active()
	entries := make([]ListEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, ListEntry{
			FileID:   d.FileID,
			Title:    DisplayTitle(d.Filename),
			Glyph:    d.Status.Glyph(),
			Status:   d.Status,
			Selected: d.FileID == active.FileID,
		})
	}
	l.view.RenderList(entries, "")
	return docs, nil
}

// Last returns the most recently fetched list.
func (l *Lister) Last() []Document {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Document(nil), l.last...)
}

// Select binds fileID and replaces the transcript with its stored summary
// and history. The binding is kept even if loading the history fails.
func (l *Lister) Select(ctx context.Context, fileID, filename string) (*Document, error) {
	l.state.Bind(fileID, filename)
	b, _ := l.state.current()
	l.view.ClearTranscript()
	l.view.AppendMessage(Message{Role: RoleAssistant, Text: fmt.Sprintf("📂 Loading %s...", filename)})

	resp, err := l.backend.FetchSummary(ctx, l.userID, fileID)
	if !l.state.holds(b) {
		if err != nil {
			return nil, &StatusQueryError{FileID: fileID, Err: err}
		}
		return nil, ErrSuperseded
	}
	l.view.ClearTranscript()
	if err != nil {
		l.view.AppendMessage(Message{Role: RoleAssistant, Text: fmt.Sprintf("%sCould not load %s.", warnPrefix, filename)})
		return nil, &StatusQueryError{FileID: fileID, Err: err}
	}

	doc := &Document{
		FileID:      fileID,
		Filename:    filename,
		Status:      Status(resp.Status),
		SummaryText: resp.SummaryText,
	}
	l.view.AppendMessage(Message{Role: RoleAssistant, Text: fmt.Sprintf("✅ Selected %s.", filename)})
	if resp.SummaryText != "" {
		l.view.AppendMessage(Message{Role: RoleAssistant, Text: summaryHeader + resp.SummaryText})
	}
	for _, h := range resp.ChatHistory {
		doc.Transcript = append(doc.Transcript, Turn{Question: h.Question, Answer: h.Answer})
		if h.Question != "" {
			l.view.AppendMessage(Message{Role: RoleUser, Text: h.Question})
		}
		if h.Answer != "" {
			l.view.AppendMessage(Message{Role: RoleAssistant, Text: h.Answer})
		}
	}
	return doc, nil
}
