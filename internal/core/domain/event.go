package domain

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Date           string     `json:"date"`
	Time           string     `json:"time"`
	Location       string     `json:"location"`
	Category       string     `json:"category"`
	Price          float64    `json:"price"`
	ImageURL       string     `json:"image_url"`
	ExternalLink   string     `json:"external_link,omitempty"`
	AvailableSeats int        `json:"available_seats"`
	SeatLayout     SeatLayout `json:"seat_layout"`
	CreatedAt      time.Time  `json:"created_at"`
}

// EventPatch carries a partial update; nil fields are left unchanged.
type EventPatch struct {
	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Date           *string  `json:"date,omitempty"`
	Time           *string  `json:"time,omitempty"`
	Location       *string  `json:"location,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	ImageURL       *string  `json:"image_url,omitempty"`
	ExternalLink   *string  `json:"external_link,omitempty"`
	AvailableSeats *int     `json:"available_seats,omitempty"`
}

func (p EventPatch) Apply(e *Event) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Price != nil {
		e.Price = *p.Price
	}
	if p.ImageURL != nil {
		e.ImageURL = *p.ImageURL
	}
	if p.ExternalLink != nil {
		e.ExternalLink = *p.ExternalLink
	}
	if p.AvailableSeats != nil {
		e.AvailableSeats = *p.AvailableSeats
	}
}

type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon,omitempty"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

type AccreditationCategory struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Zones       []string  `json:"zones"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Admin struct {
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

func (a *Admin) User() AdminUser {
	return AdminUser{Username: a.Username, Role: a.Role, CreatedAt: a.CreatedAt}
}
