package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/internal/response"
	"github.com/GregMSThompson/recovery-dashboard/pkg/logger"
)

type reportService interface {
	BuildReport(ctx context.Context, kind string, c dto.FilterCriteria) (*dto.Report, error)
	Export(ctx context.Context, kind string, c dto.FilterCriteria, format string) (*dto.ExportedFile, error)
}

type reportHandlers struct {
	ResponseHandler response.ResponseHandler
	ReportSvc       reportService
}

func NewReportHandlers(deps *Deps) *reportHandlers {
	return &reportHandlers{
		ResponseHandler: deps.ResponseHandler,
		ReportSvc:       deps.ReportSvc,
	}
}

func (h *reportHandlers) ReportRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{kind}", h.GetReport)
	r.Get("/{kind}/export", h.ExportReport)
	return r
}

func (h *reportHandlers) GetReport(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	report, err := h.ReportSvc.BuildReport(r.Context(), chi.URLParam(r, "kind"), c)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, report)
}

// ExportReport streams file exports as attachments. Sheets exports have no
// body and answer with the published location instead.
func (h *reportHandlers) ExportReport(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = dto.FormatCSV
	}

	file, err := h.ReportSvc.Export(r.Context(), chi.URLParam(r, "kind"), c, format)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if file.Location != "" {
		h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, file)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		logger.FromContext(r.Context()).Error("failed to write export", "export_id", file.ID, "error", err)
	}
}
