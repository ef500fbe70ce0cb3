package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KaramelBytes/docchat-cli/internal/api"
)

// fileIDSeparator joins the owner and the object name in a file id.
const fileIDSeparator = "_____"

const historyTimestampLayout = "2006-01-02 15:04:05.000000"

func registerRoutes(r *gin.Engine, s *Server) {
	r.GET("/health", s.handleHealth)
	r.POST("/upload-url", s.handleUploadURL)
	r.PUT("/objects/*key", MaxBodySize(maxUploadBytes), s.handlePutObject)
	r.GET("/list", s.handleList)
	r.GET("/summary", s.handleSummary)
	r.POST("/chat", s.handleChat)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// newFileID builds "<user>_____<uuid>.<ext>"; ext defaults to pdf.
func newFileID(userID, filename string) string {
	ext := "pdf"
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		ext = filename[i+1:]
	}
	return fmt.Sprintf("%s%s%s.%s", userID, fileIDSeparator, uuid.NewString(), ext)
}

func (s *Server) handleUploadURL(c *gin.Context) {
	var req api.UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.Filename = strings.TrimSpace(req.Filename)
	if req.UserID == "" || req.Filename == "" {
		respondMessage(c, http.StatusBadRequest, "user_id and filename are required")
		return
	}

	fileID := newFileID(req.UserID, req.Filename)
	uploadURL, err := s.objects.UploadURL(c.Request.Context(), fileID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	rec := Record{
		UserID:     req.UserID,
		FileID:     fileID,
		Filename:   req.Filename,
		Status:     StatusPending,
		UploadDate: s.now().Format(uploadDateLayout),
	}
	if err := s.store.Put(c.Request.Context(), rec); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, api.UploadURLResponse{UploadURL: uploadURL, FileID: fileID})
}

func (s *Server) handlePutObject(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		respondMessage(c, http.StatusBadRequest, "object key required")
		return
	}
	data, err := readBody(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondMessage(c, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := s.objects.Put(c.Request.Context(), key, data, c.ContentType()); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	s.processor.Start(ownerOf(key), key)
	c.Status(http.StatusOK)
}

func (s *Server) handleList(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respondMessage(c, http.StatusBadRequest, "user_id required")
		return
	}
	recs, err := s.store.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	files := make([]api.FileSummary, 0, len(recs))
	for _, r := range recs {
		files = append(files, api.FileSummary{
			FileID:     r.FileID,
			Filename:   r.Filename,
			Status:     r.Status,
			UploadDate: r.UploadDate,
		})
	}
	c.JSON(http.StatusOK, api.ListResponse{Files: files})
}

func (s *Server) handleSummary(c *gin.Context) {
	userID, fileID := c.Query("user_id"), c.Query("file_id")
	ctx := c.Request.Context()
	rec, err := s.store.Get(ctx, userID, fileID)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusOK, api.SummaryResponse{Status: StatusProcessing})
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if rec.Status == StatusPending {
		// Presigned uploads bypass this server; notice them on first poll.
		if ok, err := s.objects.Exists(ctx, fileID); err != nil {
			s.logger.Printf("summary %s: %v", fileID, err)
		} else if ok && s.processor.Start(userID, fileID) {
			rec.Status = StatusProcessing
		}
	}
	c.JSON(http.StatusOK, api.SummaryResponse{
		Status:      rec.Status,
		SummaryText: rec.Summary,
		ChatHistory: rec.ChatHistory,
	})
}

func (s *Server) handleChat(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.FileID == "" || req.Question == "" {
		respondMessage(c, http.StatusBadRequest, "file_id and question are required")
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = ownerOf(req.FileID)
	}

	ctx := c.Request.Context()
	rec, err := s.store.Get(ctx, userID, req.FileID)
	if errors.Is(err, ErrNotFound) {
		respondMessage(c, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if rec.Status != StatusCompleted {
		respondMessage(c, http.StatusConflict, "document is not ready")
		return
	}

	answer := Answer(rec.Text, rec.ChatHistory, req.Question)
	entry := api.HistoryEntry{
		Question:  req.Question,
		Answer:    answer,
		Timestamp: s.now().Format(historyTimestampLayout),
	}
	err = s.store.Update(ctx, userID, req.FileID, func(r *Record) error {
		r.ChatHistory = append(r.ChatHistory, entry)
		return nil
	})
	if err != nil {
		// The answer is still returned when the history cannot be saved.
		s.logger.Printf("chat %s: save history: %v", req.FileID, err)
	}
	c.JSON(http.StatusOK, api.ChatResponse{Answer: answer})
}

func respondError(c *gin.Context, status int, err error) {
	respondMessage(c, status, err.Error())
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
