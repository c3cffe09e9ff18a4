package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/services"
)

type SettingsHandler struct {
	settings *services.SettingsService
	log      *logrus.Entry
}

func NewSettingsHandler(settings *services.SettingsService, log *logrus.Entry) *SettingsHandler {
	return &SettingsHandler{settings: settings, log: log}
}

func (h *SettingsHandler) GetSiteConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.SiteConfig(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *SettingsHandler) UpdateSiteConfig(w http.ResponseWriter, r *http.Request) {
	var req services.SiteConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	cfg, err := h.settings.UpdateSiteConfig(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// ListPaymentMethods serves buyers, so only active methods are shown.
func (h *SettingsHandler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	h.listPaymentMethods(w, r, true)
}

func (h *SettingsHandler) ListAllPaymentMethods(w http.ResponseWriter, r *http.Request) {
	h.listPaymentMethods(w, r, false)
}

func (h *SettingsHandler) listPaymentMethods(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	methods, err := h.settings.ListPaymentMethods(r.Context(), activeOnly)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if methods == nil {
		methods = []domain.PaymentMethod{}
	}
	writeJSON(w, http.StatusOK, methods)
}

func (h *SettingsHandler) CreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req services.PaymentMethodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	m, err := h.settings.CreatePaymentMethod(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *SettingsHandler) UpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req services.PaymentMethodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	m, err := h.settings.UpdatePaymentMethod(r.Context(), id, req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *SettingsHandler) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.settings.DeletePaymentMethod(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SettingsHandler) ListTableCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.settings.ListTableCategories(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if cats == nil {
		cats = []domain.TableCategory{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *SettingsHandler) CreateTableCategory(w http.ResponseWriter, r *http.Request) {
	var req services.TableCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	c, err := h.settings.CreateTableCategory(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *SettingsHandler) UpdateTableCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req services.TableCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	c, err := h.settings.UpdateTableCategory(r.Context(), id, req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *SettingsHandler) DeleteTableCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.settings.DeleteTableCategory(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
