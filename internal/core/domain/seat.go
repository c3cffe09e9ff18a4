package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type LayoutType string

const (
	LayoutGeneral LayoutType = "general"
	LayoutTables  LayoutType = "tables"
	LayoutMixed   LayoutType = "mixed"
)

type Table struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Chairs   int     `json:"chairs"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
}

type GeneralZone struct {
	Name     string  `json:"name"`
	Capacity int     `json:"capacity"`
	Price    float64 `json:"price"`
}

type SeatLayout struct {
	Type         LayoutType    `json:"type"`
	Tables       []Table       `json:"tables,omitempty"`
	GeneralZones []GeneralZone `json:"general_zones,omitempty"`
}

func (l SeatLayout) Validate() error {
	switch l.Type {
	case LayoutGeneral, LayoutTables, LayoutMixed:
	default:
		return fmt.Errorf("%w: unknown layout type %q", ErrInvalidInput, l.Type)
	}
	seen := make(map[string]struct{}, len(l.Tables))
	for _, t := range l.Tables {
		if strings.TrimSpace(t.ID) == "" || t.Chairs <= 0 {
			return fmt.Errorf("%w: table %q needs an id and at least one chair", ErrInvalidInput, t.Name)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: duplicate table id %q", ErrInvalidInput, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	for _, z := range l.GeneralZones {
		if z.Capacity < 0 {
			return fmt.Errorf("%w: zone %q has negative capacity", ErrInvalidInput, z.Name)
		}
	}
	return nil
}

func (l SeatLayout) HasTables() bool {
	return len(l.Tables) > 0
}

func (l SeatLayout) Capacity() int {
	total := 0
	for _, t := range l.Tables {
		total += t.Chairs
	}
	for _, z := range l.GeneralZones {
		total += z.Capacity
	}
	return total
}

func SeatID(tableID string, chair int) string {
	return fmt.Sprintf("M%s-S%d", tableID, chair)
}

// HasSeat reports whether id (M<table>-S<chair>) names a chair in the layout.
func (l SeatLayout) HasSeat(id string) bool {
	tablePart, chairPart, ok := strings.Cut(id, "-S")
	if !ok || !strings.HasPrefix(tablePart, "M") {
		return false
	}
	chair, err := strconv.Atoi(chairPart)
	if err != nil || chair < 1 {
		return false
	}
	tableID := strings.TrimPrefix(tablePart, "M")
	for _, t := range l.Tables {
		if t.ID == tableID {
			return chair <= t.Chairs
		}
	}
	return false
}

type SeatMap struct {
	EventID       string     `json:"event_id"`
	Type          LayoutType `json:"type"`
	Layout        SeatLayout `json:"layout"`
	TotalCapacity int        `json:"total_capacity"`
	Occupied      []string   `json:"occupied"`
	Pending       []string   `json:"pending"`
	Available     int        `json:"available"`
}

func (m *SeatMap) Taken(seat string) bool {
	for _, s := range m.Occupied {
		if s == seat {
			return true
		}
	}
	for _, s := range m.Pending {
		if s == seat {
			return true
		}
	}
	return false
}

type ReserveRequest struct {
	EventID   string   `json:"event_id"`
	Seats     []string `json:"seats"`
	SessionID string   `json:"session_id"`
}

// Reservation echoes a seat hold. ExpiresIn is advisory only; holds are not
// stored and purchases do not check them.
type Reservation struct {
	Seats     []string `json:"seats"`
	SessionID string   `json:"session_id"`
	ExpiresIn int      `json:"expires_in"`
}
