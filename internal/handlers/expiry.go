package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/internal/response"
)

type expiryService interface {
	ListExpiry(ctx context.Context, c dto.FilterCriteria, status string) (*dto.ExpiryListResult, error)
}

type expiryHandlers struct {
	ResponseHandler response.ResponseHandler
	ExpirySvc       expiryService
}

func NewExpiryHandlers(deps *Deps) *expiryHandlers {
	return &expiryHandlers{
		ResponseHandler: deps.ResponseHandler,
		ExpirySvc:       deps.ExpirySvc,
	}
}

func (h *expiryHandlers) ExpiryRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListExpiry)
	return r
}

func (h *expiryHandlers) ListExpiry(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	res, err := h.ExpirySvc.ListExpiry(r.Context(), c, r.URL.Query().Get("status"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, res)
}
