package postgres_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/feria_ticket/internal/adapter/repository/postgres"
	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var credentialCols = []string{
	"id", "kind", "event_id", "code", "integrity_hash", "qr_payload", "payment_status", "entry_status",
	"access_history", "holder_name", "holder_email", "holder_phone", "sequence", "details", "version",
	"created_at", "approved_at",
}

func TestCredentialRepository_GetByCodeDecodesTicket(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewCredentialRepository(db, postgres.TicketsTable)

	id, eventID := uuid.New(), uuid.New()
	now := time.Now().UTC()
	history, _ := json.Marshal([]domain.AccessEntry{{Action: domain.AccessEnter, At: now}})
	details, _ := json.Marshal(domain.TicketDetails{EventName: "Feria", Seat: "M1-S1", Category: "VIP", Price: 20})

	mock.ExpectQuery(`SELECT .* FROM tickets WHERE code = \$1`).
		WithArgs("CF-1").
		WillReturnRows(sqlmock.NewRows(credentialCols).AddRow(
			id.String(), "ticket", eventID.String(), "CF-1", "hash", "payload", "approved", "inside",
			history, "Ana", "ana@example.com", "", 7, details, 3, now, now,
		))

	c, err := repo.GetByCode(context.Background(), "CF-1")
	require.NoError(t, err)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, domain.KindTicket, c.Kind)
	require.NotNil(t, c.Ticket)
	assert.Equal(t, "M1-S1", c.Ticket.Seat)
	assert.Equal(t, 7, c.Ticket.Sequence)
	assert.Len(t, c.AccessHistory, 1)
	require.NotNil(t, c.ApprovedAt)
	assert.True(t, c.IsInside())
}

func TestCredentialRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewCredentialRepository(db, postgres.AccreditationsTable)

	id := uuid.New()
	mock.ExpectQuery(`SELECT .* FROM accreditations WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCredentialRepository_CreateBatchInTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewCredentialRepository(db, postgres.TicketsTable)

	eventID := uuid.New()
	creds := []*domain.Credential{
		{ID: uuid.New(), Kind: domain.KindTicket, EventID: eventID, Code: "CF-1", Ticket: &domain.TicketDetails{Sequence: 1}},
		{ID: uuid.New(), Kind: domain.KindTicket, EventID: eventID, Code: "CF-2", Ticket: &domain.TicketDetails{Sequence: 2}},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO tickets`)
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateBatch(context.Background(), creds))
	assert.Equal(t, 1, creds[0].Version)
}

func TestCredentialRepository_RecordAccessConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewCredentialRepository(db, postgres.TicketsTable)

	id := uuid.New()
	mock.ExpectExec(`UPDATE tickets\s+SET entry_status = \$1`).
		WithArgs(domain.EntryInside, sqlmock.AnyArg(), id, domain.EntryOutside).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := repo.RecordAccess(context.Background(), id, domain.EntryOutside, domain.AccessEntry{Action: domain.AccessEnter, At: time.Now()})
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestCredentialRepository_RecordAccessApplied(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewCredentialRepository(db, postgres.TicketsTable)

	id := uuid.New()
	mock.ExpectExec(`UPDATE tickets\s+SET entry_status = \$1`).
		WithArgs(domain.EntryOutside, sqlmock.AnyArg(), id, domain.EntryInside).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RecordAccess(context.Background(), id, domain.EntryInside, domain.AccessEntry{Action: domain.AccessExit, At: time.Now()})
	assert.NoError(t, err)
}

func TestCredentialRepository_UpdatePaymentStatusMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewCredentialRepository(db, postgres.TicketsTable)

	id := uuid.New()
	mock.ExpectExec(`UPDATE tickets\s+SET payment_status`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.UpdatePaymentStatus(context.Background(), id, domain.PaymentPending, domain.PaymentApproved, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCredentialRepository_ListBuildsFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewCredentialRepository(db, postgres.TicketsTable)

	eventID := uuid.New()
	mock.ExpectQuery(`FROM tickets WHERE event_id = \$1 AND payment_status = \$2 ORDER BY created_at DESC, code`).
		WithArgs(eventID, domain.PaymentPending).
		WillReturnRows(sqlmock.NewRows(credentialCols))

	out, err := repo.List(context.Background(), domain.CredentialFilter{EventID: &eventID, PaymentStatus: domain.PaymentPending})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCredentialRepository_NextSequence(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewCredentialRepository(db, postgres.TicketsTable)

	eventID := uuid.New()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(sequence\), 0\) \+ 1 FROM tickets`).
		WithArgs(eventID).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(12))

	next, err := repo.NextSequence(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, 12, next)
}
