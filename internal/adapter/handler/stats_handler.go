package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/feria_ticket/internal/core/services"
)

type StatsHandler struct {
	stats *services.StatsService
	log   *logrus.Entry
}

func NewStatsHandler(stats *services.StatsService, log *logrus.Entry) *StatsHandler {
	return &StatsHandler{stats: stats, log: log}
}

func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.stats.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *StatsHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	occ, err := h.stats.Occupancy(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, occ)
}

func (h *StatsHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	att, err := h.stats.Attendance(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, att)
}
