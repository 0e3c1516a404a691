package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/resume-reader/internal/export"
	"github.com/jonathan/resume-reader/internal/server/middleware"
	"github.com/jonathan/resume-reader/internal/types"
)

// uploadField is the multipart form field carrying the document.
const uploadField = "file"

// UploadResponse is returned after a document has been stored and parsed.
type UploadResponse struct {
	Message string              `json:"message"`
	Resume  *types.ResumeRecord `json:"resume"`
}

// DownloadStatus describes the caller's remaining download allowance.
type DownloadStatus struct {
	Message   string `json:"message"`
	Used      int    `json:"downloads_used"`
	Limit     int    `json:"download_limit"`
	Remaining int    `json:"downloads_remaining"`
}

// handleUpload handles POST /resumes/upload
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, &ErrUploadTooLarge{Limit: s.maxUploadBytes})
			return
		}
		s.writeError(w, r, &ErrValidation{Field: uploadField, Message: "multipart form with a file is required"})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: uploadField, Message: "file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	// Browsers send octet-stream for unknown types; let the service infer from the file name.
	contentType := header.Header.Get("Content-Type")
	if contentType == "application/octet-stream" {
		contentType = ""
	}

	record, err := s.service.Upload(r.Context(), header.Filename, contentType, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, UploadResponse{
		Message: "Resume uploaded successfully",
		Resume:  record,
	})
}

// handleSearch handles GET /resumes/search?query=&field=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	views, err := s.search(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, views)
}

// handleExport handles GET /resumes/search/export?query=&field=
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	views, err := s.search(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := export.WriteMaskedXLSX(views)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": "resumes.xlsx"}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) search(r *http.Request) ([]types.MaskedResumeView, error) {
	query := r.URL.Query().Get("query")
	if field := strings.TrimSpace(r.URL.Query().Get("field")); field != "" {
		return s.service.SearchField(r.Context(), field, query)
	}
	return s.service.Search(r.Context(), query)
}

// handleByEmail handles GET /resumes/by-email?email=
func (s *Server) handleByEmail(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.GetByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, records)
}

// handlePreview handles GET /resumes/{id}/preview
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	record, err := s.service.Preview(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, record)
}

// handleDownload handles GET /resumes/{id}/download
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.GetSessionID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, ok := s.downloads.Allow(sessionID); !ok {
		s.writeError(w, r, &ErrDownloadLimitReached{Limit: s.downloads.Limit()})
		return
	}

	record, blob, err := s.service.Download(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer blob.Body.Close()

	// Concurrent downloads on one session race between Allow and Record.
	info, ok := s.downloads.Record(sessionID)
	if !ok {
		s.writeError(w, r, &ErrDownloadLimitReached{Limit: info.Limit})
		return
	}

	fileName := blob.FileName
	if fileName == "" {
		fileName = record.FileName
	}
	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	w.Header().Set("X-Downloads-Remaining", strconv.Itoa(info.Remaining))
	if blob.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, blob.Body); err != nil {
		s.logger.Warn("download.stream.failed", "id", record.ID, "session_id", sessionID, "error", err)
		return
	}
	s.logger.Info("download.ok", "id", record.ID, "session_id", sessionID, "remaining", info.Remaining)
}

// handleThanks handles GET /download/thanks. The acknowledgement is shown once per download;
// any other visit is sent back to the search listing.
func (s *Server) handleThanks(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.GetSessionID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !s.downloads.JustDownloaded(sessionID) {
		http.Redirect(w, r, "/resumes/search", http.StatusSeeOther)
		return
	}

	info, _ := s.downloads.Allow(sessionID)
	s.jsonResponse(w, http.StatusOK, DownloadStatus{
		Message:   "Thank you for downloading",
		Used:      info.Used,
		Limit:     info.Limit,
		Remaining: info.Remaining,
	})
}

// handleLimitReached handles GET /download/limit-reached
func (s *Server) handleLimitReached(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.GetSessionID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	info, _ := s.downloads.Allow(sessionID)
	s.jsonResponse(w, http.StatusOK, DownloadStatus{
		Message:   (&ErrDownloadLimitReached{Limit: info.Limit}).Error(),
		Used:      info.Used,
		Limit:     info.Limit,
		Remaining: info.Remaining,
	})
}
