package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/feria_ticket/internal/core/services"
)

type WalkInHandler struct {
	walkins *services.WalkInService
	log     *logrus.Entry
}

func NewWalkInHandler(walkins *services.WalkInService, log *logrus.Entry) *WalkInHandler {
	return &WalkInHandler{walkins: walkins, log: log}
}

func (h *WalkInHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req services.WalkInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	resp, err := h.walkins.Generate(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *WalkInHandler) Image(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	img, err := h.walkins.Image(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeBytes(w, "image/png", "walkin-"+id.String()+".png", img)
}
