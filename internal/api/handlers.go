// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/internal/ingest"
	"github.com/pdiddy/compliance-engine/internal/store"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

const defaultSearchLimit = 10

// Error is the error payload of a failed request.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope returned for every failed request.
type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

// UploadResponse acknowledges an accepted document.
type UploadResponse struct {
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
}

// BatchItem reports one file of a batch upload.
type BatchItem struct {
	Filename   string `json:"filename"`
	DocumentID string `json:"document_id,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// BatchResponse acknowledges a batch upload.
type BatchResponse struct {
	Message string      `json:"message"`
	Results []BatchItem `json:"results"`
}

// StatusResponse reports a completed or pending analysis.
type StatusResponse struct {
	Status string        `json:"status"`
	Result *types.Record `json:"result,omitempty"`
}

// HistoryResponse lists analyses newest first.
type HistoryResponse struct {
	History []types.RecordSummary `json:"history"`
	Total   int                   `json:"total"`
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Results []types.RecordSummary `json:"results"`
	Total   int                   `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

// BulkDeleteRequest lists the documents to delete.
type BulkDeleteRequest struct {
	DocumentIDs []string `json:"document_ids"`
}

// BulkDeleteItem reports the outcome for one id.
type BulkDeleteItem struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: Error{Code: code, Message: message}})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": s.version})
}

// upload handles POST /api/documents/upload with a multipart "file" or a
// "text_content" form field.
func (s *Server) upload(c *gin.Context) {
	id := uuid.New()

	fh, err := c.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		fail(c, http.StatusBadRequest, "INVALID_FORM", err.Error())
		return
	}

	if fh == nil {
		text := c.PostForm("text_content")
		if text == "" {
			fail(c, http.StatusBadRequest, "MISSING_CONTENT", "Either file or text content must be provided")
			return
		}
		if strings.TrimSpace(text) == "" {
			fail(c, http.StatusBadRequest, "EMPTY_CONTENT", "Text content is empty. Please provide some text to analyze.")
			return
		}
		s.dispatch(job{id: id.String(), text: text})
		c.JSON(http.StatusAccepted, UploadResponse{Message: "Document received and being processed", DocumentID: id.String()})
		return
	}

	text, key, code, err := s.accept(c, id, fh)
	if err != nil {
		fail(c, http.StatusBadRequest, code, err.Error())
		return
	}
	s.dispatch(job{id: id.String(), text: text, blobKey: key})
	c.JSON(http.StatusAccepted, UploadResponse{Message: "Document received and being processed", DocumentID: id.String()})
}

// batch handles POST /api/documents/batch with repeated "files" fields.
func (s *Server) batch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_FORM", err.Error())
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		fail(c, http.StatusBadRequest, "MISSING_FILES", "No files provided")
		return
	}
	if len(files) > s.cfg.MaxBatch {
		fail(c, http.StatusBadRequest, "TOO_MANY_FILES", fmt.Sprintf("Maximum %d files allowed per batch", s.cfg.MaxBatch))
		return
	}

	results := make([]BatchItem, 0, len(files))
	for _, fh := range files {
		id := uuid.New()
		text, key, _, err := s.accept(c, id, fh)
		if err != nil {
			results = append(results, BatchItem{Filename: fh.Filename, Status: "error", Error: err.Error()})
			continue
		}
		s.dispatch(job{id: id.String(), text: text, blobKey: key})
		results = append(results, BatchItem{Filename: fh.Filename, DocumentID: id.String(), Status: "processing"})
	}

	c.JSON(http.StatusAccepted, BatchResponse{
		Message: fmt.Sprintf("Batch processing started for %d documents", len(files)),
		Results: results,
	})
}

// accept validates an uploaded file, keeps its bytes in blob storage and
// extracts its text. On failure it returns an error code for the response.
func (s *Server) accept(c *gin.Context, id uuid.UUID, fh *multipart.FileHeader) (string, string, string, error) {
	if err := ingest.Validate(fh.Filename, fh.Size, s.maxFileSize); err != nil {
		return "", "", "INVALID_FILE", fmt.Errorf("invalid file type or size: %s", fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return "", "", "FILE_OPEN_ERROR", err
	}
	defer f.Close()

	data, err := ingest.ReadLimited(f, s.maxFileSize)
	if err != nil {
		return "", "", "INVALID_FILE", err
	}
	text, err := ingest.Extract(fh.Filename, data)
	if err != nil {
		return "", "", "EMPTY_FILE", errors.New("file is empty or could not be read")
	}

	var key string
	if s.blobs != nil {
		key, err = s.blobs.Upload(c.Request.Context(), id, fh.Filename, bytes.NewReader(data))
		if err != nil {
			return "", "", "UPLOAD_FAILED", fmt.Errorf("storing upload: %w", err)
		}
	}
	return text, key, "", nil
}

func (s *Server) status(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	rec, err := s.records.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusOK, StatusResponse{Status: "pending"})
	case err != nil:
		fail(c, http.StatusInternalServerError, "STATUS_FAILED", err.Error())
	default:
		c.JSON(http.StatusOK, StatusResponse{Status: "completed", Result: &rec})
	}
}

func (s *Server) history(c *gin.Context) {
	limit, offset, ok := pagination(c, 0)
	if !ok {
		return
	}
	page, err := s.records.History(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, http.StatusInternalServerError, "HISTORY_FAILED", err.Error())
		return
	}
	c.JSON(http.StatusOK, HistoryResponse{History: page.Records, Total: page.Total})
}

func (s *Server) search(c *gin.Context) {
	limit, offset, ok := pagination(c, defaultSearchLimit)
	if !ok {
		return
	}
	status := types.Status(c.Query("status"))
	switch status {
	case "", types.StatusCompliant, types.StatusNonCompliant, types.StatusError:
	default:
		fail(c, http.StatusBadRequest, "INVALID_STATUS", fmt.Sprintf("Unknown status %q", status))
		return
	}

	page, err := s.records.Search(c.Request.Context(), store.SearchOptions{
		Query:  c.Query("query"),
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "SEARCH_FAILED", err.Error())
		return
	}
	c.JSON(http.StatusOK, SearchResponse{Results: page.Records, Total: page.Total, Limit: limit, Offset: offset})
}

func (s *Server) deleteDocument(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	err := s.remove(c, id)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		fail(c, http.StatusNotFound, "NOT_FOUND", "Document not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
	}
}

func (s *Server) bulkDelete(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if len(req.DocumentIDs) == 0 {
		fail(c, http.StatusBadRequest, "MISSING_IDS", "No document IDs provided")
		return
	}
	if len(req.DocumentIDs) > s.cfg.MaxBulkDelete {
		fail(c, http.StatusBadRequest, "TOO_MANY_IDS", fmt.Sprintf("Maximum %d documents can be deleted at once", s.cfg.MaxBulkDelete))
		return
	}

	results := make([]BulkDeleteItem, 0, len(req.DocumentIDs))
	for _, id := range req.DocumentIDs {
		item := BulkDeleteItem{DocumentID: id, Status: "success", Message: "Document deleted successfully"}
		if u, err := uuid.Parse(id); err != nil {
			item.Status, item.Message = "error", "Invalid document ID format"
		} else if err := s.remove(c, u.String()); errors.Is(err, errs.ErrNotFound) {
			item.Status, item.Message = "error", "Document not found"
		} else if err != nil {
			item.Status, item.Message = "error", err.Error()
		}
		results = append(results, item)
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// remove deletes the stored upload, if any, and then the record.
func (s *Server) remove(c *gin.Context, id string) error {
	ctx := c.Request.Context()
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.FilePath != "" && s.blobs != nil {
		if err := s.blobs.Delete(ctx, rec.FilePath); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("could not delete stored upload")
		}
	}
	return s.records.Delete(ctx, id)
}

func documentID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid document ID format")
		return "", false
	}
	return id.String(), true
}

func pagination(c *gin.Context, defLimit int) (int, int, bool) {
	limit, offset := defLimit, 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fail(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer")
			return 0, 0, false
		}
		limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fail(c, http.StatusBadRequest, "INVALID_OFFSET", "offset must be a non-negative integer")
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}
