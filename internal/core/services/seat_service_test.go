package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/feria_ticket/internal/adapter/repository/memory"
	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/ports/mocks"
	"github.com/srgjo27/feria_ticket/internal/core/services"
	"github.com/srgjo27/feria_ticket/internal/platform/logger"
)

func seedSeats(t *testing.T) (*memory.EventStore, *memory.CredentialStore, *domain.Event) {
	t.Helper()
	ctx := context.Background()
	events := memory.NewEventStore()
	tickets := memory.NewCredentialStore()
	event := tableEvent(8)
	event.SeatLayout.Tables = append(event.SeatLayout.Tables, domain.Table{ID: "2", Name: "Mesa 2", Chairs: 4})
	require.NoError(t, events.Create(ctx, event))

	require.NoError(t, tickets.CreateBatch(ctx, []*domain.Credential{
		{ID: uuid.New(), Kind: domain.KindTicket, EventID: event.ID, Code: "A", PaymentStatus: domain.PaymentApproved, Ticket: &domain.TicketDetails{Seat: "M1-S1"}},
		{ID: uuid.New(), Kind: domain.KindTicket, EventID: event.ID, Code: "B", PaymentStatus: domain.PaymentPending, Ticket: &domain.TicketDetails{Seat: "M1-S2"}},
	}))
	return events, tickets, event
}

func TestSeatMap_SplitsOccupiedAndPending(t *testing.T) {
	events, tickets, event := seedSeats(t)
	svc := services.NewSeatService(events, tickets, nil, logger.Discard())

	m, err := svc.Map(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LayoutTables, m.Type)
	assert.Equal(t, 8, m.TotalCapacity)
	assert.Equal(t, []string{"M1-S1"}, m.Occupied)
	assert.Equal(t, []string{"M1-S2"}, m.Pending)
}

func TestSeatMap_ReadThroughCache(t *testing.T) {
	events, tickets, event := seedSeats(t)
	seatCache := mocks.NewSeatCache(t)
	svc := services.NewSeatService(events, tickets, seatCache, logger.Discard())
	ctx := context.Background()

	seatCache.On("Get", ctx, event.ID).Return(nil, false, nil).Once()
	seatCache.On("Set", ctx, event.ID, mock.AnythingOfType("*domain.SeatMap")).Return(nil).Once()
	_, err := svc.Map(ctx, event.ID)
	require.NoError(t, err)

	cached := &domain.SeatMap{EventID: event.ID.String(), Available: 99}
	seatCache.On("Get", ctx, event.ID).Return(cached, true, nil).Once()
	m, err := svc.Map(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 99, m.Available)
}

func TestSeatMap_CacheErrorFallsBackToStore(t *testing.T) {
	events, tickets, event := seedSeats(t)
	seatCache := mocks.NewSeatCache(t)
	svc := services.NewSeatService(events, tickets, seatCache, logger.Discard())
	ctx := context.Background()

	seatCache.On("Get", ctx, event.ID).Return(nil, false, errors.New("redis down"))
	seatCache.On("Set", ctx, event.ID, mock.Anything).Return(errors.New("redis down"))

	m, err := svc.Map(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"M1-S1"}, m.Occupied)
}

func TestReserve(t *testing.T) {
	events, tickets, event := seedSeats(t)
	svc := services.NewSeatService(events, tickets, nil, logger.Discard())
	ctx := context.Background()

	res, err := svc.Reserve(ctx, domain.ReserveRequest{EventID: event.ID.String(), Seats: []string{"M2-S1"}, SessionID: "s-1"})
	require.NoError(t, err)
	assert.Equal(t, 600, res.ExpiresIn)
	assert.Equal(t, "s-1", res.SessionID)

	_, err = svc.Reserve(ctx, domain.ReserveRequest{EventID: event.ID.String(), Seats: []string{"M1-S2", "M2-S2"}})
	assert.ErrorIs(t, err, domain.ErrSeatsTaken)

	_, err = svc.Reserve(ctx, domain.ReserveRequest{EventID: event.ID.String(), Seats: []string{"M9-S1"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Nothing was held by the first reservation.
	res, err = svc.Reserve(ctx, domain.ReserveRequest{EventID: event.ID.String(), Seats: []string{"M2-S1"}})
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
}

func TestConfigure_ResetsCapacity(t *testing.T) {
	events, tickets, event := seedSeats(t)
	svc := services.NewSeatService(events, tickets, nil, logger.Discard())
	ctx := context.Background()

	layout := domain.SeatLayout{
		Type:         domain.LayoutMixed,
		Tables:       []domain.Table{{ID: "1", Chairs: 2}},
		GeneralZones: []domain.GeneralZone{{Name: "Grada", Capacity: 10}},
	}
	m, err := svc.Configure(ctx, event.ID, layout)
	require.NoError(t, err)
	assert.Equal(t, 12, m.TotalCapacity)
	assert.Equal(t, 10, m.Available)

	stored, _ := events.GetByID(ctx, event.ID)
	assert.Equal(t, domain.LayoutMixed, stored.SeatLayout.Type)

	_, err = svc.Configure(ctx, event.ID, domain.SeatLayout{Type: "circle"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
