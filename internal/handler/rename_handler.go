package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"csv-renamer/internal/service"
	"csv-renamer/pkg/apierror"
)

type RenameHandler struct {
	service    *service.RenameService
	maxCSVSize int64
}

func NewRenameHandler(service *service.RenameService, maxCSVSize int64) *RenameHandler {
	return &RenameHandler{service: service, maxCSVSize: maxCSVSize}
}

// Preview parses an uploaded mapping CSV and returns its entries without
// touching any files.
func (h *RenameHandler) Preview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxCSVSize)

	if err := r.ParseMultipartForm(h.maxCSVSize); err != nil {
		writeError(w, multipartError(err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, apierror.BadRequest("form field 'file' is required", "file"))
		return
	}
	defer file.Close()

	hasHeader, err := boolFormValue(r, "has_header", true)
	if err != nil {
		writeError(w, err)
		return
	}

	preview, err := h.service.Preview(r.Context(), file, hasHeader)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, preview, nil)
}

// Execute runs a rename batch: CSV mapping plus a target directory inside
// the storage root. With dry_run=true the outcomes are classified but no
// file is moved.
func (h *RenameHandler) Execute(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxCSVSize)

	if err := r.ParseMultipartForm(h.maxCSVSize); err != nil {
		writeError(w, multipartError(err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apierror.BadRequest("form field 'file' is required", "file"))
		return
	}
	defer file.Close()

	directory := strings.TrimSpace(r.FormValue("directory"))
	if directory == "" {
		writeError(w, apierror.BadRequest("form field 'directory' is required", "directory"))
		return
	}

	hasHeader, err := boolFormValue(r, "has_header", true)
	if err != nil {
		writeError(w, err)
		return
	}

	dryRun, err := boolFormValue(r, "dry_run", false)
	if err != nil {
		writeError(w, err)
		return
	}

	run, err := h.service.Execute(r.Context(), file, header.Filename, directory, hasHeader, dryRun, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, run, nil)
}

func boolFormValue(r *http.Request, field string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apierror.BadRequest("form field '"+field+"' must be a boolean", field)
	}

	return value, nil
}

func multipartError(err error) error {
	if isPayloadTooLarge(err) {
		return apierror.New("PAYLOAD_TOO_LARGE", "request body exceeds MAX_CSV_SIZE", "MAX_CSV_SIZE", http.StatusRequestEntityTooLarge)
	}
	return apierror.BadRequest("invalid multipart body", err.Error())
}

func isPayloadTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "request body too large")
}
