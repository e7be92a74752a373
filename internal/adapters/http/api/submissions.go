package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/stadio-ml/stadio/internal/adapters/auth"
)

// uploadField is the multipart form field carrying the prediction file.
const uploadField = "file"

// SubmissionsHandler handles submission uploads and history reads.
type SubmissionsHandler struct {
	deps           Dependencies
	resolver       auth.Resolver
	maxUploadBytes int64
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps Dependencies, resolver auth.Resolver, maxUploadBytes int64) *SubmissionsHandler {
	return &SubmissionsHandler{
		deps:           deps,
		resolver:       resolver,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleSubmissions dispatches POST (upload) and GET (history) on
// /submissions. Both require a valid API key.
func (h *SubmissionsHandler) HandleSubmissions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleUpload(w, r)
	case http.MethodGet:
		h.handleHistory(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleUpload accepts a multipart form with the prediction CSV under the
// "file" field and runs it through the submission pipeline.
func (h *SubmissionsHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID, err := identify(r, h.resolver, true)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Code:    "upload_too_large",
				Message: "upload exceeds the size limit",
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "bad_multipart",
			Message: "multipart form rejected",
		})
		return
	}
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "missing_file",
			Message: "multipart field \"file\" is required",
		})
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "unreadable_file",
			Message: "could not read upload",
		})
		return
	}

	receipt, err := h.deps.Submit(r.Context(), userID, header.Filename, payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// handleHistory returns the caller's evaluated submissions, oldest first.
func (h *SubmissionsHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := identify(r, h.resolver, true)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	entries, err := h.deps.History(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
