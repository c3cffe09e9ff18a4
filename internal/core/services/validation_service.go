package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/integrity"
	"github.com/srgjo27/feria_ticket/internal/core/ports"
	"github.com/srgjo27/feria_ticket/internal/platform/metrics"
)

const (
	msgAccepted      = "Valid credential"
	msgEntered       = "Entry registered"
	msgExited        = "Exit registered"
	msgCorrupt       = "Invalid or corrupt code"
	msgNotFound      = "Credential not found"
	msgFraud         = "Fraud detected: credential data was altered"
	msgPending       = "Payment pending approval"
	msgAlreadyInside = "Already inside"
	msgNotInside     = "Not inside: no entry registered"
)

// ValidationService answers gate scans. Every business failure becomes an
// Outcome; only store failures are returned as errors.
type ValidationService struct {
	tickets        ports.CredentialRepository
	accreditations ports.CredentialRepository
	issuer         *integrity.Issuer
	publisher      ports.EventPublisher
	locks          *keyLock
	now            func() time.Time
	log            *logrus.Entry
}

func NewValidationService(
	tickets, accreditations ports.CredentialRepository,
	issuer *integrity.Issuer,
	publisher ports.EventPublisher,
	log *logrus.Entry,
) *ValidationService {
	return &ValidationService{
		tickets:        tickets,
		accreditations: accreditations,
		issuer:         issuer,
		publisher:      publisher,
		locks:          newKeyLock(),
		now:            func() time.Time { return time.Now().UTC() },
		log:            log,
	}
}

// Validate resolves a QR payload or a typed code to a credential and applies
// the action to it. Exactly one of QRPayload and Code must be set.
func (s *ValidationService) Validate(ctx context.Context, req domain.ValidationRequest) (domain.Outcome, error) {
	hasPayload := strings.TrimSpace(req.QRPayload) != ""
	hasCode := strings.TrimSpace(req.Code) != ""
	if hasPayload == hasCode {
		return domain.Outcome{}, fmt.Errorf("%w: send either qr_payload or code", domain.ErrInvalidInput)
	}

	action, err := domain.ParseAction(string(req.Action))
	if err != nil {
		return domain.Outcome{}, err
	}

	var out domain.Outcome
	if hasPayload {
		out, err = s.validatePayload(ctx, strings.TrimSpace(req.QRPayload), action)
	} else {
		out, err = s.validateCode(ctx, req.Code, action)
	}
	if err != nil {
		return domain.Outcome{}, err
	}

	kind := string(out.Kind)
	if kind == "" {
		kind = "unknown"
	}
	metrics.Validations.WithLabelValues(kind, string(action), out.Result()).Inc()

	fields := logrus.Fields{"action": action, "result": out.Result(), "kind": out.Kind}
	if out.Summary != nil {
		fields["credential_id"] = out.Summary.ID
		fields["event_id"] = out.Summary.EventID
	}
	if out.Alert == domain.AlertFraud {
		s.log.WithFields(fields).Warn("fraudulent credential presented")
	} else {
		s.log.WithFields(fields).Info("credential validated")
	}
	return out, nil
}

func (s *ValidationService) validatePayload(ctx context.Context, payload string, action domain.Action) (domain.Outcome, error) {
	decoded, err := s.issuer.Decode(payload)
	if err != nil {
		return s.corrupt(""), nil
	}

	kind := decoded.Kind()
	if !kind.Valid() {
		return s.corrupt(""), nil
	}
	id, err := uuid.Parse(decoded.String(integrity.KeyEntityID))
	if err != nil {
		return s.corrupt(kind.StoreKind()), nil
	}

	store := s.storeFor(kind)
	c, err := store.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Rejected(kind.StoreKind(), msgNotFound, "", domain.ErrNotFound, nil, s.now()), nil
	}
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("lookup credential %s: %w", id, err)
	}

	if err := s.issuer.VerifyPayload(decoded, c.IntegrityHash); err != nil {
		return s.fraud(c), nil
	}
	return s.apply(ctx, store, c, action)
}

// validateCode looks the code up in tickets first and then accreditations.
func (s *ValidationService) validateCode(ctx context.Context, raw string, action domain.Action) (domain.Outcome, error) {
	code := integrity.NormalizeCode(raw)

	var c *domain.Credential
	var store ports.CredentialRepository
	for _, candidate := range []ports.CredentialRepository{s.tickets, s.accreditations} {
		found, err := candidate.GetByCode(ctx, code)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return domain.Outcome{}, fmt.Errorf("lookup code %s: %w", code, err)
		}
		c, store = found, candidate
		break
	}
	if c == nil {
		return domain.Rejected("", msgNotFound, "", domain.ErrNotFound, nil, s.now()), nil
	}

	if err := s.issuer.VerifyCredential(c); err != nil {
		return s.fraud(c), nil
	}
	return s.apply(ctx, store, c, action)
}

func (s *ValidationService) apply(ctx context.Context, store ports.CredentialRepository, c *domain.Credential, action domain.Action) (domain.Outcome, error) {
	kind := c.Kind.StoreKind()
	if !c.IsApproved() {
		return domain.Rejected(kind, msgPending, domain.AlertPendingApproval, domain.ErrNotApproved, c, s.now()), nil
	}

	switch action {
	case domain.ActionEnter:
		return s.transition(ctx, store, c, domain.AccessEnter)
	case domain.ActionExit:
		return s.transition(ctx, store, c, domain.AccessExit)
	}
	return domain.Accepted(kind, msgAccepted, c, s.now()), nil
}

// transition records an entry or exit. The keyed lock orders scans inside
// this process; RecordAccess's compare-and-swap orders them across processes.
func (s *ValidationService) transition(ctx context.Context, store ports.CredentialRepository, c *domain.Credential, access domain.AccessAction) (domain.Outcome, error) {
	kind := c.Kind.StoreKind()
	expected, next := domain.EntryOutside, domain.EntryInside
	alert, msg, okMsg := domain.AlertAlreadyInside, msgAlreadyInside, msgEntered
	if access == domain.AccessExit {
		expected, next = domain.EntryInside, domain.EntryOutside
		alert, msg, okMsg = domain.AlertNotInside, msgNotInside, msgExited
	}

	unlock := s.locks.Lock(c.ID.String())
	defer unlock()

	cur, err := store.GetByID(ctx, c.ID)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("reload credential %s: %w", c.ID, err)
	}
	if cur.EntryStatus != expected {
		return domain.Rejected(kind, msg, alert, domain.ErrStateConflict, cur, s.now()), nil
	}

	entry := domain.AccessEntry{Action: access, At: s.now()}
	err = store.RecordAccess(ctx, cur.ID, expected, entry)
	if errors.Is(err, domain.ErrStateConflict) {
		if latest, rerr := store.GetByID(ctx, cur.ID); rerr == nil {
			cur = latest
		}
		return domain.Rejected(kind, msg, alert, domain.ErrStateConflict, cur, s.now()), nil
	}
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("record access %s: %w", cur.ID, err)
	}

	cur.EntryStatus = next
	cur.AccessHistory = append(cur.AccessHistory, entry)
	s.publishAccess(ctx, cur, entry)

	return domain.Accepted(kind, okMsg, cur, entry.At), nil
}

func (s *ValidationService) publishAccess(ctx context.Context, c *domain.Credential, entry domain.AccessEntry) {
	if s.publisher == nil {
		return
	}
	msg := map[string]any{
		"credential_id": c.ID,
		"event_id":      c.EventID,
		"kind":          c.Kind,
		"code":          c.Code,
		"action":        entry.Action,
		"at":            entry.At,
	}
	if err := s.publisher.Publish(ctx, "access."+string(entry.Action), msg); err != nil {
		s.log.WithError(err).WithField("credential_id", c.ID).Warn("publish access event failed")
	}
}

func (s *ValidationService) storeFor(kind domain.Kind) ports.CredentialRepository {
	if kind.StoreKind() == domain.KindAccreditation {
		return s.accreditations
	}
	return s.tickets
}

func (s *ValidationService) corrupt(kind domain.Kind) domain.Outcome {
	return domain.Rejected(kind, msgCorrupt, "", domain.ErrDecodeFailure, nil, s.now())
}

func (s *ValidationService) fraud(c *domain.Credential) domain.Outcome {
	return domain.Rejected(c.Kind.StoreKind(), msgFraud, domain.AlertFraud, domain.ErrIntegrityMismatch, c, s.now())
}
