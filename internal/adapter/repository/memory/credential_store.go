package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

// CredentialStore keeps one credential collection in memory. Records are
// cloned on the way in and out.
type CredentialStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*domain.Credential
	byCode map[string]uuid.UUID
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		byID:   make(map[uuid.UUID]*domain.Credential),
		byCode: make(map[string]uuid.UUID),
	}
}

func (s *CredentialStore) CreateBatch(_ context.Context, creds []*domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(creds))
	for _, c := range creds {
		if _, ok := s.byID[c.ID]; ok {
			return fmt.Errorf("credential %s already exists", c.ID)
		}
		if _, ok := s.byCode[c.Code]; ok {
			return fmt.Errorf("credential code %s already exists", c.Code)
		}
		if _, ok := seen[c.Code]; ok {
			return fmt.Errorf("credential code %s repeated in batch", c.Code)
		}
		seen[c.Code] = struct{}{}
	}
	for _, c := range creds {
		if c.Version == 0 {
			c.Version = 1
		}
		s.byID[c.ID] = c.Clone()
		s.byCode[c.Code] = c.ID
	}
	return nil
}

func (s *CredentialStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *CredentialStore) GetByCode(_ context.Context, code string) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.byID[id].Clone(), nil
}

func (s *CredentialStore) List(_ context.Context, filter domain.CredentialFilter) ([]domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Credential, 0, len(s.byID))
	for _, c := range s.byID {
		if filter.Match(c) {
			out = append(out, *c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (s *CredentialStore) UpdatePaymentStatus(_ context.Context, id uuid.UUID, from, to domain.PaymentStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.PaymentStatus != from {
		return domain.ErrStateConflict
	}
	c.PaymentStatus = to
	if to == domain.PaymentApproved {
		t := at
		c.ApprovedAt = &t
	}
	c.Version++
	return nil
}

func (s *CredentialStore) UpdateIssuance(_ context.Context, id uuid.UUID, code, hash, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if other, taken := s.byCode[code]; taken && other != id {
		return fmt.Errorf("credential code %s already exists", code)
	}
	delete(s.byCode, c.Code)
	c.Code = code
	c.IntegrityHash = hash
	c.QRPayload = payload
	c.Version++
	s.byCode[code] = id
	return nil
}

func (s *CredentialStore) RecordAccess(_ context.Context, id uuid.UUID, expected domain.EntryStatus, entry domain.AccessEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.EntryStatus != expected {
		return domain.ErrStateConflict
	}
	c.EntryStatus = nextEntryStatus(entry.Action)
	c.AccessHistory = append(c.AccessHistory, entry)
	c.Version++
	return nil
}

func nextEntryStatus(a domain.AccessAction) domain.EntryStatus {
	if a == domain.AccessEnter {
		return domain.EntryInside
	}
	return domain.EntryOutside
}

func (s *CredentialStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.byCode, c.Code)
	delete(s.byID, id)
	return nil
}

func (s *CredentialStore) HeldSeats(_ context.Context, eventID uuid.UUID) ([]domain.SeatHold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.SeatHold
	for _, c := range s.byID {
		if c.EventID != eventID || c.PaymentStatus == domain.PaymentRejected || c.Seat() == "" {
			continue
		}
		out = append(out, domain.SeatHold{Seat: c.Seat(), PaymentStatus: c.PaymentStatus})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seat < out[j].Seat })
	return out, nil
}

func (s *CredentialStore) NextSequence(_ context.Context, eventID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	max := 0
	for _, c := range s.byID {
		if c.EventID == eventID && c.Ticket != nil && c.Ticket.Sequence > max {
			max = c.Ticket.Sequence
		}
	}
	return max + 1, nil
}
