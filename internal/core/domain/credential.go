package domain

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindTicket        Kind = "ticket"
	KindWalkIn        Kind = "walkin"
	KindAccreditation Kind = "accreditation"
)

func (k Kind) Valid() bool {
	switch k {
	case KindTicket, KindWalkIn, KindAccreditation:
		return true
	}
	return false
}

// StoreKind is the collection a credential of this kind lives in. Walk-in
// tickets share the ticket store.
func (k Kind) StoreKind() Kind {
	if k == KindWalkIn {
		return KindTicket
	}
	return k
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

type EntryStatus string

const (
	EntryOutside EntryStatus = "outside"
	EntryInside  EntryStatus = "inside"
)

type SaleType string

const (
	SaleOnline    SaleType = "online"
	SaleBoxOffice SaleType = "box_office"
)

type AccessAction string

const (
	AccessEnter AccessAction = "enter"
	AccessExit  AccessAction = "exit"
)

type AccessEntry struct {
	Action AccessAction `json:"action"`
	At     time.Time    `json:"at"`
}

type Holder struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type TicketDetails struct {
	EventName     string   `json:"event_name"`
	Sequence      int      `json:"sequence"`
	Seat          string   `json:"seat,omitempty"`
	Category      string   `json:"category,omitempty"`
	Price         float64  `json:"price"`
	PaymentMethod string   `json:"payment_method,omitempty"`
	SaleType      SaleType `json:"sale_type"`
}

type AccreditationDetails struct {
	CategoryID   uuid.UUID `json:"category_id"`
	Category     string    `json:"category"`
	Color        string    `json:"color,omitempty"`
	Zones        []string  `json:"zones"`
	Organization string    `json:"organization,omitempty"`
	Role         string    `json:"role,omitempty"`
}

// Credential is a ticket, walk-in ticket or accreditation badge. Exactly one
// of Ticket or Accreditation is set, selected by Kind.
type Credential struct {
	ID            uuid.UUID     `json:"id"`
	Kind          Kind          `json:"kind"`
	EventID       uuid.UUID     `json:"event_id"`
	Code          string        `json:"code"`
	IntegrityHash string        `json:"integrity_hash"`
	QRPayload     string        `json:"qr_payload"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	EntryStatus   EntryStatus   `json:"entry_status"`
	AccessHistory []AccessEntry `json:"access_history"`
	Holder        Holder        `json:"holder"`
	Version       int           `json:"version"`
	CreatedAt     time.Time     `json:"created_at"`
	ApprovedAt    *time.Time    `json:"approved_at,omitempty"`

	Ticket        *TicketDetails        `json:"ticket,omitempty"`
	Accreditation *AccreditationDetails `json:"accreditation,omitempty"`
}

func (c *Credential) IsApproved() bool {
	return c.PaymentStatus == PaymentApproved
}

func (c *Credential) IsInside() bool {
	return c.EntryStatus == EntryInside
}

func (c *Credential) Seat() string {
	if c.Ticket == nil {
		return ""
	}
	return c.Ticket.Seat
}

func (c *Credential) CategoryName() string {
	switch {
	case c.Ticket != nil:
		return c.Ticket.Category
	case c.Accreditation != nil:
		return c.Accreditation.Category
	}
	return ""
}

func (c *Credential) LastAccess() *AccessEntry {
	if len(c.AccessHistory) == 0 {
		return nil
	}
	last := c.AccessHistory[len(c.AccessHistory)-1]
	return &last
}

// Clone returns a deep copy so stores never share slices with callers.
func (c *Credential) Clone() *Credential {
	out := *c
	out.AccessHistory = append([]AccessEntry(nil), c.AccessHistory...)
	if c.ApprovedAt != nil {
		t := *c.ApprovedAt
		out.ApprovedAt = &t
	}
	if c.Ticket != nil {
		t := *c.Ticket
		out.Ticket = &t
	}
	if c.Accreditation != nil {
		a := *c.Accreditation
		a.Zones = append([]string(nil), c.Accreditation.Zones...)
		out.Accreditation = &a
	}
	return &out
}

type CredentialFilter struct {
	EventID       *uuid.UUID
	PaymentStatus PaymentStatus
	Email         string
}

func (f CredentialFilter) Match(c *Credential) bool {
	if f.EventID != nil && c.EventID != *f.EventID {
		return false
	}
	if f.PaymentStatus != "" && c.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.Email != "" && c.Holder.Email != f.Email {
		return false
	}
	return true
}

// SeatHold is a seat occupied by a non-rejected ticket.
type SeatHold struct {
	Seat          string
	PaymentStatus PaymentStatus
}
