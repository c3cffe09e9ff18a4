package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionVerify Action = "verify"
	ActionEnter  Action = "enter"
	ActionExit   Action = "exit"
)

// ParseAction accepts the English actions and the scanner's legacy Spanish
// names. An empty string means verify.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "verify", "verificar":
		return ActionVerify, nil
	case "enter", "entrada":
		return ActionEnter, nil
	case "exit", "salida":
		return ActionExit, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrInvalidInput, s)
}

type AlertKind string

const (
	AlertFraud           AlertKind = "fraud"
	AlertAlreadyInside   AlertKind = "already_inside"
	AlertNotInside       AlertKind = "not_inside"
	AlertPendingApproval AlertKind = "pending_approval"
)

type ValidationRequest struct {
	QRPayload string `json:"qr_payload,omitempty"`
	Code      string `json:"code,omitempty"`
	Action    Action `json:"action,omitempty"`
}

type RecordSummary struct {
	ID            uuid.UUID     `json:"id"`
	Code          string        `json:"code"`
	EventID       uuid.UUID     `json:"event_id"`
	EventName     string        `json:"event_name,omitempty"`
	HolderName    string        `json:"holder_name,omitempty"`
	HolderEmail   string        `json:"holder_email,omitempty"`
	Seat          string        `json:"seat,omitempty"`
	Category      string        `json:"category,omitempty"`
	Zones         []string      `json:"zones,omitempty"`
	SaleType      SaleType      `json:"sale_type,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	EntryStatus   EntryStatus   `json:"entry_status"`
	LastAccess    *AccessEntry  `json:"last_access,omitempty"`
}

func Summarize(c *Credential) *RecordSummary {
	s := &RecordSummary{
		ID:            c.ID,
		Code:          c.Code,
		EventID:       c.EventID,
		HolderName:    c.Holder.Name,
		HolderEmail:   c.Holder.Email,
		PaymentStatus: c.PaymentStatus,
		EntryStatus:   c.EntryStatus,
		LastAccess:    c.LastAccess(),
	}
	if c.Ticket != nil {
		s.EventName = c.Ticket.EventName
		s.Seat = c.Ticket.Seat
		s.Category = c.Ticket.Category
		s.SaleType = c.Ticket.SaleType
	}
	if c.Accreditation != nil {
		s.Category = c.Accreditation.Category
		s.Zones = append([]string(nil), c.Accreditation.Zones...)
	}
	return s
}

// Outcome is the terminal answer of a validation. Business failures are
// outcomes, not errors; Err exposes the matching sentinel.
type Outcome struct {
	Valid   bool           `json:"valid"`
	Message string         `json:"message"`
	Kind    Kind           `json:"kind,omitempty"`
	Alert   AlertKind      `json:"alert_kind,omitempty"`
	Summary *RecordSummary `json:"record_summary,omitempty"`
	At      time.Time      `json:"server_time"`

	cause error
}

func (o Outcome) Err() error { return o.cause }

// Result is a short label for logs and metrics.
func (o Outcome) Result() string {
	switch {
	case o.Valid:
		return "accepted"
	case o.Alert != "":
		return string(o.Alert)
	case errors.Is(o.cause, ErrDecodeFailure):
		return "invalid_code"
	case errors.Is(o.cause, ErrNotFound):
		return "not_found"
	}
	return "rejected"
}

func Accepted(kind Kind, msg string, c *Credential, now time.Time) Outcome {
	return Outcome{Valid: true, Message: msg, Kind: kind, Summary: Summarize(c), At: now}
}

func Rejected(kind Kind, msg string, alert AlertKind, cause error, c *Credential, now time.Time) Outcome {
	o := Outcome{Message: msg, Kind: kind, Alert: alert, At: now, cause: cause}
	if c != nil {
		o.Summary = Summarize(c)
	}
	return o
}
