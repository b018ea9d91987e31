package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/recovery-dashboard/internal/errs"
	"github.com/GregMSThompson/recovery-dashboard/internal/models"
	"github.com/GregMSThompson/recovery-dashboard/internal/response"
)

// maxImportBytes bounds an import request body.
const maxImportBytes = 32 << 20

type recordService interface {
	ImportFiles(ctx context.Context, files []models.BankFileRecord) (int, error)
	ImportCollections(ctx context.Context, collections []models.CollectionRecord) (int, error)
}

type importResult struct {
	Imported int `json:"imported"`
}

type recordHandlers struct {
	ResponseHandler response.ResponseHandler
	RecordSvc       recordService
}

func NewRecordHandlers(deps *Deps) *recordHandlers {
	return &recordHandlers{
		ResponseHandler: deps.ResponseHandler,
		RecordSvc:       deps.RecordSvc,
	}
}

func (h *recordHandlers) RecordRoutes() chi.Router {
	r := chi.NewRouter()
	r.Put("/files", h.ImportFiles)
	r.Put("/collections", h.ImportCollections)
	return r
}

func (h *recordHandlers) ImportFiles(w http.ResponseWriter, r *http.Request) {
	var files []models.BankFileRecord
	if err := decodeBody(w, r, &files); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	n, err := h.RecordSvc.ImportFiles(r.Context(), files)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, importResult{Imported: n})
}

func (h *recordHandlers) ImportCollections(w http.ResponseWriter, r *http.Request) {
	var collections []models.CollectionRecord
	if err := decodeBody(w, r, &collections); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	n, err := h.RecordSvc.ImportCollections(r.Context(), collections)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, importResult{Imported: n})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err := dec.Decode(v); err != nil {
		return errs.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}
