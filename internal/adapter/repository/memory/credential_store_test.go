package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

func ticket(eventID uuid.UUID, code, seat string, status domain.PaymentStatus) *domain.Credential {
	return &domain.Credential{
		ID:            uuid.New(),
		Kind:          domain.KindTicket,
		EventID:       eventID,
		Code:          code,
		PaymentStatus: status,
		EntryStatus:   domain.EntryOutside,
		Ticket:        &domain.TicketDetails{Seat: seat, Sequence: 1},
	}
}

func TestCredentialStore_RecordAccessIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore()
	c := ticket(uuid.New(), "CF-1", "M1-S1", domain.PaymentApproved)
	require.NoError(t, s.CreateBatch(ctx, []*domain.Credential{c}))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.RecordAccess(ctx, c.ID, domain.EntryOutside, domain.AccessEntry{Action: domain.AccessEnter, At: time.Now()})
			if err == nil {
				atomic.AddInt32(&wins, 1)
			} else {
				assert.ErrorIs(t, err, domain.ErrStateConflict)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins)
	got, err := s.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryInside, got.EntryStatus)
	assert.Len(t, got.AccessHistory, 1)
}

func TestCredentialStore_ClonesOnReadAndWrite(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore()
	c := ticket(uuid.New(), "CF-2", "", domain.PaymentPending)
	require.NoError(t, s.CreateBatch(ctx, []*domain.Credential{c}))

	c.Ticket.Seat = "mutated"
	got, err := s.GetByCode(ctx, "CF-2")
	require.NoError(t, err)
	assert.Empty(t, got.Ticket.Seat)

	got.AccessHistory = append(got.AccessHistory, domain.AccessEntry{Action: domain.AccessEnter})
	again, _ := s.GetByID(ctx, c.ID)
	assert.Empty(t, again.AccessHistory)
}

func TestCredentialStore_PaymentStatusTransitions(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore()
	c := ticket(uuid.New(), "CF-3", "", domain.PaymentPending)
	require.NoError(t, s.CreateBatch(ctx, []*domain.Credential{c}))

	now := time.Now()
	require.NoError(t, s.UpdatePaymentStatus(ctx, c.ID, domain.PaymentPending, domain.PaymentApproved, now))
	err := s.UpdatePaymentStatus(ctx, c.ID, domain.PaymentPending, domain.PaymentApproved, now)
	assert.ErrorIs(t, err, domain.ErrStateConflict)

	got, _ := s.GetByID(ctx, c.ID)
	require.NotNil(t, got.ApprovedAt)
	assert.Equal(t, 2, got.Version)
}

func TestCredentialStore_HeldSeatsAndSequence(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore()
	event := uuid.New()

	a := ticket(event, "CF-A", "M1-S1", domain.PaymentApproved)
	b := ticket(event, "CF-B", "M1-S2", domain.PaymentPending)
	b.Ticket.Sequence = 4
	r := ticket(event, "CF-C", "M1-S3", domain.PaymentRejected)
	other := ticket(uuid.New(), "CF-D", "M1-S4", domain.PaymentApproved)
	require.NoError(t, s.CreateBatch(ctx, []*domain.Credential{a, b, r, other}))

	held, err := s.HeldSeats(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, []domain.SeatHold{
		{Seat: "M1-S1", PaymentStatus: domain.PaymentApproved},
		{Seat: "M1-S2", PaymentStatus: domain.PaymentPending},
	}, held)

	next, err := s.NextSequence(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, 5, next)
}

func TestCredentialStore_DuplicateCodeRejectsBatch(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore()
	event := uuid.New()
	err := s.CreateBatch(ctx, []*domain.Credential{
		ticket(event, "CF-X", "", domain.PaymentPending),
		ticket(event, "CF-X", "", domain.PaymentPending),
	})
	assert.Error(t, err)

	all, _ := s.List(ctx, domain.CredentialFilter{})
	assert.Empty(t, all)
}
