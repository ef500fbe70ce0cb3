package session

import "time"

// Status is the last processing state observed for a document.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Terminal reports whether no further polling is needed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Glyph is the list marker shown next to a document.
func (s Status) Glyph() string {
	switch s {
	case StatusCompleted:
		return "✓"
	case StatusProcessing:
		return "⏳"
	default:
		return "⚠"
	}
}

// Turn is one question/answer exchange.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Document is the client-side view of a backend document record.
type Document struct {
	FileID      string    `json:"file_id"`
	Filename    string    `json:"filename"`
	Status      Status    `json:"status"`
	UploadDate  time.Time `json:"upload_date"`
	SummaryText string    `json:"summary_text,omitempty"`
	Transcript  []Turn    `json:"transcript,omitempty"`
}

// uploadDateLayouts are tried in order; the backend writes the first one.
var uploadDateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// ParseUploadDate parses a backend upload_date. Unparseable input yields the
// zero time, which sorts after every real date.
func ParseUploadDate(s string) time.Time {
	for _, layout := range uploadDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript display unit.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}
