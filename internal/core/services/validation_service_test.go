package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/feria_ticket/internal/adapter/repository/memory"
	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/integrity"
	"github.com/srgjo27/feria_ticket/internal/core/ports/mocks"
	"github.com/srgjo27/feria_ticket/internal/core/services"
	"github.com/srgjo27/feria_ticket/internal/platform/logger"
)

var testKey = []byte("ciudad_feria_secret_key_2026_tachira_venezuela")

func newTestIssuer(t *testing.T) *integrity.Issuer {
	t.Helper()
	c, err := integrity.NewCipher("cfb", testKey)
	require.NoError(t, err)
	s, err := integrity.NewSigner([]byte("walkin-signing-key"))
	require.NoError(t, err)
	return integrity.NewIssuer(c, s, integrity.NewCodeGenerator(), nil)
}

type validationFixture struct {
	svc            *services.ValidationService
	tickets        *memory.CredentialStore
	accreditations *memory.CredentialStore
	issuer         *integrity.Issuer
	publisher      *mocks.EventPublisher
}

func newValidationFixture(t *testing.T) *validationFixture {
	f := &validationFixture{
		tickets:        memory.NewCredentialStore(),
		accreditations: memory.NewCredentialStore(),
		issuer:         newTestIssuer(t),
		publisher:      mocks.NewEventPublisher(t),
	}
	f.svc = services.NewValidationService(f.tickets, f.accreditations, f.issuer, f.publisher, logger.Discard())
	return f
}

func (f *validationFixture) issueTicket(t *testing.T, eventID uuid.UUID, holder, seat string, status domain.PaymentStatus) *domain.Credential {
	t.Helper()
	c := &domain.Credential{
		ID:            uuid.New(),
		Kind:          domain.KindTicket,
		EventID:       eventID,
		PaymentStatus: status,
		EntryStatus:   domain.EntryOutside,
		Holder:        domain.Holder{Name: holder, Email: "ana@example.com"},
		CreatedAt:     time.Now(),
		Ticket: &domain.TicketDetails{
			EventName: "Corrida de Toros",
			Sequence:  1,
			Seat:      seat,
			Category:  "VIP",
			SaleType:  domain.SaleOnline,
		},
	}
	_, err := f.issuer.IssueCredential(c)
	require.NoError(t, err)
	require.NoError(t, f.tickets.CreateBatch(context.Background(), []*domain.Credential{c}))
	return c
}

func TestValidate_EntryLifecycle(t *testing.T) {
	f := newValidationFixture(t)
	ctx := context.Background()
	c := f.issueTicket(t, uuid.New(), "Ana", "M1-S3", domain.PaymentApproved)

	f.publisher.On("Publish", mock.Anything, "access.enter", mock.Anything).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, "access.exit", mock.Anything).Return(nil).Once()

	out, err := f.svc.Validate(ctx, domain.ValidationRequest{QRPayload: c.QRPayload})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Equal(t, domain.KindTicket, out.Kind)
	assert.Equal(t, "M1-S3", out.Summary.Seat)

	out, err = f.svc.Validate(ctx, domain.ValidationRequest{QRPayload: c.QRPayload, Action: domain.ActionEnter})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Equal(t, domain.EntryInside, out.Summary.EntryStatus)
	require.NotNil(t, out.Summary.LastAccess)
	assert.Equal(t, domain.AccessEnter, out.Summary.LastAccess.Action)

	out, err = f.svc.Validate(ctx, domain.ValidationRequest{QRPayload: c.QRPayload, Action: domain.ActionEnter})
	require.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Equal(t, domain.AlertAlreadyInside, out.Alert)
	assert.ErrorIs(t, out.Err(), domain.ErrStateConflict)

	stored, err := f.tickets.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, stored.AccessHistory, 1)

	out, err = f.svc.Validate(ctx, domain.ValidationRequest{Code: c.Code, Action: domain.ActionExit})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Equal(t, domain.EntryOutside, out.Summary.EntryStatus)

	out, err = f.svc.Validate(ctx, domain.ValidationRequest{Code: c.Code, Action: domain.ActionExit})
	require.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Equal(t, domain.AlertNotInside, out.Alert)

	stored, _ = f.tickets.GetByID(ctx, c.ID)
	require.Len(t, stored.AccessHistory, 2)
	assert.Equal(t, domain.AccessExit, stored.AccessHistory[1].Action)
}

func TestValidate_VerifyDoesNotMutate(t *testing.T) {
	f := newValidationFixture(t)
	ctx := context.Background()
	c := f.issueTicket(t, uuid.New(), "Ana", "M1-S3", domain.PaymentApproved)

	for i := 0; i < 3; i++ {
		out, err := f.svc.Validate(ctx, domain.ValidationRequest{QRPayload: c.QRPayload, Action: "verificar"})
		require.NoError(t, err)
		assert.True(t, out.Valid)
	}
	stored, _ := f.tickets.GetByID(ctx, c.ID)
	assert.Equal(t, domain.EntryOutside, stored.EntryStatus)
	assert.Empty(t, stored.AccessHistory)
	assert.Equal(t, c.Version, stored.Version)
}

func TestValidate_TamperedPayloadIsFraud(t *testing.T) {
	f := newValidationFixture(t)
	ctx := context.Background()
	c := f.issueTicket(t, uuid.New(), "Ana", "M1-S3", domain.PaymentApproved)

	decoded, err := f.issuer.Decode(c.QRPayload)
	require.NoError(t, err)
	decoded[integrity.KeySeat] = "M1-S4"
	forged, err := f.issuer.Cipher().Encode(decoded)
	require.NoError(t, err)

	out, err := f.svc.Validate(ctx, domain.ValidationRequest{QRPayload: forged, Action: domain.ActionEnter})
	require.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Equal(t, domain.AlertFraud, out.Alert)
	assert.ErrorIs(t, out.Err(), domain.ErrIntegrityMismatch)

	stored, _ := f.tickets.GetByID(ctx, c.ID)
	assert.Equal(t, domain.EntryOutside, stored.EntryStatus)
}

func TestValidate_FraudBeatsPendingApproval(t *testing.T) {
	f := newValidationFixture(t)
	c := f.issueTicket(t, uuid.New(), "Ana", "M1-S3", domain.PaymentPending)

	decoded, err := f.issuer.Decode(c.QRPayload)
	require.NoError(t, err)
	decoded[integrity.KeyHolderName] = "Mallory"
	forged, err := f.issuer.Cipher().Encode(decoded)
	require.NoError(t, err)

	out, err := f.svc.Validate(context.Background(), domain.ValidationRequest{QRPayload: forged})
	require.NoError(t, err)
	assert.Equal(t, domain.AlertFraud, out.Alert)
}

// Unapproved tickets are turned away for every action, scanned or typed in.
func TestValidate_PendingApproval(t *testing.T) {
	f := newValidationFixture(t)
	ctx := context.Background()
	c := f.issueTicket(t, uuid.New(), "Ana", "", domain.PaymentPending)

	for _, action := range []domain.Action{domain.ActionVerify, domain.ActionEnter, domain.ActionExit} {
		for _, tt := range []struct {
			name string
			req  domain.ValidationRequest
		}{
			{"qr", domain.ValidationRequest{QRPayload: c.QRPayload, Action: action}},
			{"code", domain.ValidationRequest{Code: c.Code, Action: action}},
		} {
			t.Run(string(action)+"/"+tt.name, func(t *testing.T) {
				out, err := f.svc.Validate(ctx, tt.req)
				require.NoError(t, err)
				assert.False(t, out.Valid)
				assert.Equal(t, domain.AlertPendingApproval, out.Alert)
				assert.ErrorIs(t, out.Err(), domain.ErrNotApproved)
				assert.Equal(t, domain.KindTicket, out.Kind)
			})
		}
	}

	stored, err := f.tickets.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryOutside, stored.EntryStatus)
	assert.Empty(t, stored.AccessHistory)
}

func TestValidate_CorruptPayload(t *testing.T) {
	f := newValidationFixture(t)

	out, err := f.svc.Validate(context.Background(), domain.ValidationRequest{QRPayload: "not-base64!!!"})
	require.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Empty(t, out.Alert)
	assert.ErrorIs(t, out.Err(), domain.ErrDecodeFailure)
	assert.Equal(t, "invalid_code", out.Result())
}

func TestValidate_UnknownRecord(t *testing.T) {
	f := newValidationFixture(t)
	ctx := context.Background()

	ghost := &domain.Credential{
		ID:      uuid.New(),
		Kind:    domain.KindTicket,
		EventID: uuid.New(),
		Ticket:  &domain.TicketDetails{Sequence: 1},
	}
	_, err := f.issuer.IssueCredential(ghost)
	require.NoError(t, err)

	out, err := f.svc.Validate(ctx, domain.ValidationRequest{QRPayload: ghost.QRPayload})
	require.NoError(t, err)
	assert.ErrorIs(t, out.Err(), domain.ErrNotFound)
	assert.Equal(t, domain.KindTicket, out.Kind)

	out, err = f.svc.Validate(ctx, domain.ValidationRequest{Code: "CF-NOPE-0000"})
	require.NoError(t, err)
	assert.Equal(t, "not_found", out.Result())
}

func TestValidate_ManualCodeFallsBackToAccreditations(t *testing.T) {
	f := newValidationFixture(t)
	ctx := context.Background()

	badge := &domain.Credential{
		ID:            uuid.New(),
		Kind:          domain.KindAccreditation,
		EventID:       uuid.New(),
		PaymentStatus: domain.PaymentApproved,
		EntryStatus:   domain.EntryOutside,
		Holder:        domain.Holder{Name: "Luis"},
		Accreditation: &domain.AccreditationDetails{Category: "Prensa", Zones: []string{"pit"}, Organization: "Diario"},
	}
	_, err := f.issuer.IssueCredential(badge)
	require.NoError(t, err)
	require.NoError(t, f.accreditations.CreateBatch(ctx, []*domain.Credential{badge}))

	out, err := f.svc.Validate(ctx, domain.ValidationRequest{Code: "  " + badge.Code + " "})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Equal(t, domain.KindAccreditation, out.Kind)
	assert.Equal(t, []string{"pit"}, out.Summary.Zones)

	out, err = f.svc.Validate(ctx, domain.ValidationRequest{QRPayload: badge.QRPayload})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Equal(t, domain.KindAccreditation, out.Kind)
}

func TestValidate_ManualCodeDetectsEditedRecord(t *testing.T) {
	f := newValidationFixture(t)
	ctx := context.Background()
	c := f.issueTicket(t, uuid.New(), "Ana", "M2-S1", domain.PaymentApproved)

	edited := c.Clone()
	edited.ID = uuid.New()
	edited.Code = c.Code + "X"
	edited.Ticket.Seat = "M2-S2"
	require.NoError(t, f.tickets.CreateBatch(ctx, []*domain.Credential{edited}))

	out, err := f.svc.Validate(ctx, domain.ValidationRequest{Code: edited.Code})
	require.NoError(t, err)
	assert.Equal(t, domain.AlertFraud, out.Alert)
}

func TestValidate_WalkInSignedPayload(t *testing.T) {
	f := newValidationFixture(t)
	ctx := context.Background()

	w := &domain.Credential{
		ID:            uuid.New(),
		Kind:          domain.KindWalkIn,
		EventID:       uuid.New(),
		PaymentStatus: domain.PaymentApproved,
		EntryStatus:   domain.EntryOutside,
		Ticket:        &domain.TicketDetails{EventName: "Feria", Sequence: 3, Category: "General", SaleType: domain.SaleBoxOffice},
	}
	_, err := f.issuer.IssueCredential(w)
	require.NoError(t, err)
	require.NoError(t, f.tickets.CreateBatch(ctx, []*domain.Credential{w}))

	out, err := f.svc.Validate(ctx, domain.ValidationRequest{QRPayload: w.QRPayload})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Equal(t, domain.KindTicket, out.Kind)
	assert.Equal(t, domain.SaleBoxOffice, out.Summary.SaleType)

	decoded, err := f.issuer.Decode(w.QRPayload)
	require.NoError(t, err)
	decoded[integrity.KeySig] = "0000000000000000"
	forged, err := f.issuer.Cipher().Encode(decoded)
	require.NoError(t, err)

	out, err = f.svc.Validate(ctx, domain.ValidationRequest{QRPayload: forged})
	require.NoError(t, err)
	assert.Equal(t, domain.AlertFraud, out.Alert)
}

func TestValidate_RequestErrors(t *testing.T) {
	f := newValidationFixture(t)
	ctx := context.Background()

	_, err := f.svc.Validate(ctx, domain.ValidationRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Validate(ctx, domain.ValidationRequest{QRPayload: "x", Code: "y"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Validate(ctx, domain.ValidationRequest{Code: "y", Action: "dance"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidate_StoreFailurePropagates(t *testing.T) {
	repo := mocks.NewCredentialRepository(t)
	svc := services.NewValidationService(repo, memory.NewCredentialStore(), newTestIssuer(t), nil, logger.Discard())

	boom := errors.New("connection refused")
	repo.On("GetByCode", mock.Anything, "CF-ABC").Return(nil, boom)

	_, err := svc.Validate(context.Background(), domain.ValidationRequest{Code: "cf-abc"})
	assert.ErrorIs(t, err, boom)
}

func TestValidate_ConcurrentEntryAdmitsOnce(t *testing.T) {
	f := newValidationFixture(t)
	ctx := context.Background()
	c := f.issueTicket(t, uuid.New(), "Ana", "M1-S1", domain.PaymentApproved)
	f.publisher.On("Publish", mock.Anything, "access.enter", mock.Anything).Return(nil).Once()

	const scanners = 16
	results := make(chan domain.Outcome, scanners)
	var wg sync.WaitGroup
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := f.svc.Validate(ctx, domain.ValidationRequest{QRPayload: c.QRPayload, Action: domain.ActionEnter})
			assert.NoError(t, err)
			results <- out
		}()
	}
	wg.Wait()
	close(results)

	admitted := 0
	for out := range results {
		if out.Valid {
			admitted++
		} else {
			assert.Equal(t, domain.AlertAlreadyInside, out.Alert)
		}
	}
	assert.Equal(t, 1, admitted)
}
