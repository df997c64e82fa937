package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"csv-renamer/internal/model"
	"csv-renamer/internal/service"
	"csv-renamer/pkg/apierror"
)

type RunsHandler struct {
	service *service.RenameService
}

func NewRunsHandler(service *service.RenameService) *RunsHandler {
	return &RunsHandler{service: service}
}

func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := parseIntOrDefault(query.Get("page"), 1)
	limit := parseIntOrDefault(query.Get("limit"), 20)
	if limit > 100 {
		limit = 100
	}

	runs, meta, err := h.service.ListRuns(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.RunListData{Items: runs}, &meta)
}

func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimSpace(chi.URLParam(r, "run_id"))
	if runID == "" {
		writeError(w, apierror.BadRequest("run_id is required", "run_id"))
		return
	}

	run, err := h.service.GetRun(r.Context(), runID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, run, nil)
}
