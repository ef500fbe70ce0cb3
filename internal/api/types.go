package api

// Wire types shared by the client and the development backend.

type FileSummary struct {
	FileID     string `json:"file_id"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	UploadDate string `json:"upload_date"`
}

type ListResponse struct {
	Files []FileSummary `json:"files"`
}

type UploadURLRequest struct {
	UserID   string `json:"user_id"`
	Filename string `json:"filename"`
}

type UploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	FileID    string `json:"file_id"`
}

// HistoryEntry is one stored question/answer pair.
type HistoryEntry struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp,omitempty"`
}

type SummaryResponse struct {
	Status      string         `json:"status"`
	SummaryText string         `json:"summary_text,omitempty"`
	ChatHistory []HistoryEntry `json:"chat_history,omitempty"`
}

type ChatRequest struct {
	UserID   string `json:"user_id"`
	FileID   string `json:"file_id"`
	Question string `json:"question"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}
