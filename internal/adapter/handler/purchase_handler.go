package handler

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/services"
)

type PurchaseHandler struct {
	purchases *services.PurchaseService
	log       *logrus.Entry
}

func NewPurchaseHandler(purchases *services.PurchaseService, log *logrus.Entry) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases, log: log}
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

func (h *PurchaseHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req services.PurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	resp, err := h.purchases.Purchase(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ListTickets is the buyer's lookup; the email is mandatory so one buyer
// never sees another's tickets.
func (h *PurchaseHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, r, h.log, fmt.Errorf("%w: email is required", domain.ErrInvalidInput))
		return
	}
	h.list(w, r, services.ListFilter{Email: email, EventID: r.URL.Query().Get("event_id")})
}

func (h *PurchaseHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, services.ListFilter{
		EventID:       q.Get("event_id"),
		PaymentStatus: q.Get("status"),
		Email:         q.Get("email"),
	})
}

func (h *PurchaseHandler) list(w http.ResponseWriter, r *http.Request, f services.ListFilter) {
	tickets, err := h.purchases.List(r.Context(), f)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if tickets == nil {
		tickets = []domain.Credential{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *PurchaseHandler) TicketImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	img, err := h.purchases.TicketImage(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeBytes(w, "image/png", "ticket-"+id.String()+".png", img)
}

func (h *PurchaseHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	n, err := h.purchases.Approve(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.log.WithFields(logrus.Fields{"admin": AdminFromContext(r.Context()), "approved": n}).Info("purchases approved")
	writeJSON(w, http.StatusOK, map[string]int{"approved": n})
}

func (h *PurchaseHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	n, err := h.purchases.Reject(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.log.WithFields(logrus.Fields{"admin": AdminFromContext(r.Context()), "rejected": n}).Info("purchases rejected")
	writeJSON(w, http.StatusOK, map[string]int{"rejected": n})
}

func (h *PurchaseHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	issued, err := h.purchases.Regenerate(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, issued)
}
