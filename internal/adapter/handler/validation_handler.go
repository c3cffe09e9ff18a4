package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/services"
)

type ValidationHandler struct {
	validator *services.ValidationService
	log       *logrus.Entry
}

func NewValidationHandler(validator *services.ValidationService, log *logrus.Entry) *ValidationHandler {
	return &ValidationHandler{validator: validator, log: log}
}

// Validate always answers 200 once the request is well formed; rejected
// credentials are reported in the body with valid=false.
func (h *ValidationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req domain.ValidationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	out, err := h.validator.Validate(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
