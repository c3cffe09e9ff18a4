package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/services"
)

type AccreditationHandler struct {
	accreditations *services.AccreditationService
	log            *logrus.Entry
}

func NewAccreditationHandler(accreditations *services.AccreditationService, log *logrus.Entry) *AccreditationHandler {
	return &AccreditationHandler{accreditations: accreditations, log: log}
}

func (h *AccreditationHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req services.AccreditationCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	cat, err := h.accreditations.CreateCategory(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

func (h *AccreditationHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.accreditations.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if cats == nil {
		cats = []domain.AccreditationCategory{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *AccreditationHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.accreditations.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccreditationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.AccreditationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	issued, err := h.accreditations.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, issued)
}

func (h *AccreditationHandler) List(w http.ResponseWriter, r *http.Request) {
	badges, err := h.accreditations.List(r.Context(), r.URL.Query().Get("event_id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if badges == nil {
		badges = []domain.Credential{}
	}
	writeJSON(w, http.StatusOK, badges)
}

func (h *AccreditationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.accreditations.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccreditationHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	pdf, err := h.accreditations.PDF(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeBytes(w, "application/pdf", "accreditation-"+id.String()+".pdf", pdf)
}

func (h *AccreditationHandler) EventPDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	pdf, err := h.accreditations.EventPDF(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeBytes(w, "application/pdf", "accreditations-"+id.String()+".pdf", pdf)
}
