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

const maxPurchaseQuantity = 20

type PurchaseRequest struct {
	EventID       string   `json:"event_id"`
	BuyerName     string   `json:"buyer_name"`
	BuyerEmail    string   `json:"buyer_email"`
	BuyerPhone    string   `json:"buyer_phone"`
	Quantity      int      `json:"quantity"`
	TotalPrice    float64  `json:"total_price"`
	PaymentMethod string   `json:"payment_method"`
	Category      string   `json:"category"`
	Seats         []string `json:"seats"`
}

// IssuedCredential is a stored credential plus its freshly rendered QR.
type IssuedCredential struct {
	*domain.Credential
	QRImage []byte `json:"qr_image,omitempty"`
}

type PurchaseResponse struct {
	Tickets    []IssuedCredential `json:"tickets"`
	TotalPrice float64            `json:"total_price"`
	Status     string             `json:"status"`
}

type PurchaseService struct {
	events    ports.EventRepository
	tickets   ports.CredentialRepository
	methods   ports.PaymentMethodRepository
	issuer    *integrity.Issuer
	cache     ports.SeatCache
	renderer  ports.Renderer
	notifier  ports.Notifier
	publisher ports.EventPublisher
	locks     *EventLocks
	log       *logrus.Entry
}

// NewPurchaseService wires purchase intake. methods may be nil, in which case
// the payment method is stored as given. locks should be the instance the
// walk-in service uses; nil gets a private one.
func NewPurchaseService(
	events ports.EventRepository,
	tickets ports.CredentialRepository,
	methods ports.PaymentMethodRepository,
	issuer *integrity.Issuer,
	cache ports.SeatCache,
	renderer ports.Renderer,
	notifier ports.Notifier,
	publisher ports.EventPublisher,
	locks *EventLocks,
	log *logrus.Entry,
) *PurchaseService {
	if locks == nil {
		locks = NewEventLocks()
	}
	return &PurchaseService{
		events:    events,
		tickets:   tickets,
		methods:   methods,
		issuer:    issuer,
		cache:     cache,
		renderer:  renderer,
		notifier:  notifier,
		publisher: publisher,
		locks:     locks,
		log:       log,
	}
}

func (r PurchaseRequest) validate() (uuid.UUID, error) {
	eventID, err := uuid.Parse(r.EventID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid event id", domain.ErrInvalidInput)
	}
	if r.Quantity < 1 || r.Quantity > maxPurchaseQuantity {
		return uuid.Nil, fmt.Errorf("%w: quantity must be between 1 and %d", domain.ErrInvalidInput, maxPurchaseQuantity)
	}
	if strings.TrimSpace(r.BuyerName) == "" || !strings.Contains(r.BuyerEmail, "@") {
		return uuid.Nil, fmt.Errorf("%w: buyer name and email are required", domain.ErrInvalidInput)
	}
	if r.TotalPrice < 0 {
		return uuid.Nil, fmt.Errorf("%w: negative total price", domain.ErrInvalidInput)
	}
	if len(r.Seats) != 0 && len(r.Seats) != r.Quantity {
		return uuid.Nil, fmt.Errorf("%w: %d seats selected for %d tickets", domain.ErrInvalidInput, len(r.Seats), r.Quantity)
	}
	seen := make(map[string]struct{}, len(r.Seats))
	for _, seat := range r.Seats {
		if _, dup := seen[seat]; dup {
			return uuid.Nil, fmt.Errorf("%w: seat %s selected twice", domain.ErrInvalidInput, seat)
		}
		seen[seat] = struct{}{}
	}
	return eventID, nil
}

// Purchase issues Quantity pending tickets for one buyer. Either every ticket
// is created or none is.
func (s *PurchaseService) Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResponse, error) {
	eventID, err := req.validate()
	if err != nil {
		return nil, err
	}
	method, err := s.paymentMethod(ctx, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(eventID)
	defer unlock()

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}

	if event.SeatLayout.HasTables() {
		for _, seat := range req.Seats {
			if !event.SeatLayout.HasSeat(seat) {
				return nil, fmt.Errorf("%w: seat %s does not exist", domain.ErrInvalidInput, seat)
			}
		}
	}

	if event.AvailableSeats < req.Quantity {
		return nil, fmt.Errorf("%w: %d left", domain.ErrInsufficientCapacity, event.AvailableSeats)
	}

	if len(req.Seats) > 0 {
		held, err := s.tickets.HeldSeats(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("held seats: %w", err)
		}
		if taken := takenSeats(req.Seats, held); len(taken) > 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrSeatsTaken, strings.Join(taken, ", "))
		}
	}

	seq, err := s.tickets.NextSequence(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("next sequence: %w", err)
	}

	now := time.Now().UTC()
	unitPrice := req.TotalPrice / float64(req.Quantity)
	creds := make([]*domain.Credential, 0, req.Quantity)
	issued := make([]IssuedCredential, 0, req.Quantity)

	for i := 0; i < req.Quantity; i++ {
		c := &domain.Credential{
			ID:            uuid.New(),
			Kind:          domain.KindTicket,
			EventID:       eventID,
			PaymentStatus: domain.PaymentPending,
			EntryStatus:   domain.EntryOutside,
			Holder: domain.Holder{
				Name:  strings.TrimSpace(req.BuyerName),
				Email: normalizeEmail(req.BuyerEmail),
				Phone: strings.TrimSpace(req.BuyerPhone),
			},
			Version:   1,
			CreatedAt: now,
			Ticket: &domain.TicketDetails{
				EventName:     event.Name,
				Sequence:      seq + i,
				Category:      req.Category,
				Price:         unitPrice,
				PaymentMethod: method,
				SaleType:      domain.SaleOnline,
			},
		}
		if len(req.Seats) > 0 {
			c.Ticket.Seat = req.Seats[i]
		}

		out, err := s.issuer.IssueCredential(c)
		if err != nil {
			return nil, fmt.Errorf("issue ticket: %w", err)
		}
		creds = append(creds, c)
		issued = append(issued, IssuedCredential{Credential: c, QRImage: out.QRImage})
	}

	if err := s.events.AdjustAvailableSeats(ctx, eventID, -req.Quantity); err != nil {
		return nil, fmt.Errorf("reserve capacity: %w", err)
	}

	if err := s.tickets.CreateBatch(ctx, creds); err != nil {
		s.rollbackCapacity(ctx, eventID, req.Quantity)
		return nil, fmt.Errorf("store tickets: %w", err)
	}

	s.invalidateSeats(ctx, eventID)
	metrics.CredentialsIssued.WithLabelValues(string(domain.KindTicket)).Add(float64(req.Quantity))
	s.publish(ctx, "credential.purchased", map[string]any{
		"event_id": eventID,
		"quantity": req.Quantity,
		"seats":    req.Seats,
	})

	s.log.WithFields(logrus.Fields{
		"event_id": eventID,
		"quantity": req.Quantity,
	}).Info("purchase registered, pending approval")

	return &PurchaseResponse{
		Tickets:    issued,
		TotalPrice: req.TotalPrice,
		Status:     string(domain.PaymentPending),
	}, nil
}

// paymentMethod resolves the buyer's choice against the active payment
// methods, by id or case-insensitive name. With none configured any value is
// kept as sent.
func (s *PurchaseService) paymentMethod(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if s.methods == nil {
		return raw, nil
	}
	methods, err := s.methods.List(ctx)
	if err != nil {
		return "", fmt.Errorf("payment methods: %w", err)
	}

	active := 0
	for _, m := range methods {
		if !m.Active {
			continue
		}
		active++
		if raw != "" && (m.ID.String() == raw || strings.EqualFold(m.Name, raw)) {
			return m.Name, nil
		}
	}
	if active == 0 {
		return raw, nil
	}
	if raw == "" {
		return "", fmt.Errorf("%w: payment method is required", domain.ErrInvalidInput)
	}
	return "", fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidInput, raw)
}

func takenSeats(requested []string, held []domain.SeatHold) []string {
	busy := make(map[string]struct{}, len(held))
	for _, h := range held {
		busy[h.Seat] = struct{}{}
	}
	var taken []string
	for _, seat := range requested {
		if _, ok := busy[seat]; ok {
			taken = append(taken, seat)
		}
	}
	return taken
}

func (s *PurchaseService) rollbackCapacity(ctx context.Context, eventID uuid.UUID, n int) {
	if err := s.events.AdjustAvailableSeats(ctx, eventID, n); err != nil {
		s.log.WithError(err).WithField("event_id", eventID).Error("failed to return capacity")
	}
}

// Approve moves pending tickets to approved and mails each buyer. Records
// that are missing or no longer pending are skipped.
func (s *PurchaseService) Approve(ctx context.Context, ids []string) (int, error) {
	parsed, err := parseIDs(ids)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	touched := map[uuid.UUID]struct{}{}
	approved := 0

	for _, id := range parsed {
		err := s.tickets.UpdatePaymentStatus(ctx, id, domain.PaymentPending, domain.PaymentApproved, now)
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrStateConflict) {
			s.log.WithField("credential_id", id).Debug("approve skipped")
			continue
		}
		if err != nil {
			return approved, fmt.Errorf("approve %s: %w", id, err)
		}
		approved++

		c, err := s.tickets.GetByID(ctx, id)
		if err != nil {
			s.log.WithError(err).WithField("credential_id", id).Warn("reload approved ticket failed")
			continue
		}
		touched[c.EventID] = struct{}{}
		s.deliver(ctx, c)
		s.publish(ctx, "credential.approved", map[string]any{
			"credential_id": c.ID,
			"event_id":      c.EventID,
			"code":          c.Code,
		})
	}

	for eventID := range touched {
		s.invalidateSeats(ctx, eventID)
	}
	return approved, nil
}

// deliver mails the rendered ticket. Failures are logged, never returned.
func (s *PurchaseService) deliver(ctx context.Context, c *domain.Credential) {
	if s.notifier == nil || c.Holder.Email == "" {
		return
	}
	log := s.log.WithField("credential_id", c.ID)

	event, err := s.events.GetByID(ctx, c.EventID)
	if err != nil {
		log.WithError(err).Warn("ticket email skipped: event lookup failed")
		return
	}
	img, err := s.render(c, event)
	if err != nil {
		log.WithError(err).Warn("ticket email sent without image")
	}

	err = s.notifier.SendTicket(ctx, ports.TicketMail{
		To:        c.Holder.Email,
		Name:      c.Holder.Name,
		EventName: event.Name,
		Code:      c.Code,
		Seat:      c.Seat(),
		Image:     img,
	})
	if err != nil {
		log.WithError(err).Warn("ticket email failed")
	}
}

// Reject deletes pending tickets and returns their capacity.
func (s *PurchaseService) Reject(ctx context.Context, ids []string) (int, error) {
	parsed, err := parseIDs(ids)
	if err != nil {
		return 0, err
	}

	touched := map[uuid.UUID]struct{}{}
	rejected := 0

	for _, id := range parsed {
		c, err := s.tickets.GetByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return rejected, fmt.Errorf("reject %s: %w", id, err)
		}

		err = s.tickets.UpdatePaymentStatus(ctx, id, domain.PaymentPending, domain.PaymentRejected, time.Now().UTC())
		if errors.Is(err, domain.ErrStateConflict) || errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return rejected, fmt.Errorf("reject %s: %w", id, err)
		}
		if err := s.tickets.Delete(ctx, id); err != nil {
			return rejected, fmt.Errorf("delete rejected %s: %w", id, err)
		}
		if err := s.events.AdjustAvailableSeats(ctx, c.EventID, 1); err != nil {
			s.log.WithError(err).WithField("event_id", c.EventID).Warn("capacity not returned")
		}
		touched[c.EventID] = struct{}{}
		rejected++
	}

	for eventID := range touched {
		s.invalidateSeats(ctx, eventID)
	}
	return rejected, nil
}

// Regenerate reissues the payload and hash of a ticket. The code is kept so
// printed copies stay typeable.
func (s *PurchaseService) Regenerate(ctx context.Context, id uuid.UUID) (*IssuedCredential, error) {
	c, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", id, err)
	}
	out, err := s.issuer.IssueCredential(c)
	if err != nil {
		return nil, fmt.Errorf("reissue %s: %w", id, err)
	}
	if err := s.tickets.UpdateIssuance(ctx, id, c.Code, c.IntegrityHash, c.QRPayload); err != nil {
		return nil, fmt.Errorf("store reissue %s: %w", id, err)
	}
	s.log.WithField("credential_id", id).Info("ticket regenerated")
	return &IssuedCredential{Credential: c, QRImage: out.QRImage}, nil
}

type ListFilter struct {
	EventID       string
	PaymentStatus string
	Email         string
}

func (f ListFilter) toDomain() (domain.CredentialFilter, error) {
	var out domain.CredentialFilter
	if f.EventID != "" {
		id, err := uuid.Parse(f.EventID)
		if err != nil {
			return out, fmt.Errorf("%w: invalid event id", domain.ErrInvalidInput)
		}
		out.EventID = &id
	}
	switch ps := domain.PaymentStatus(f.PaymentStatus); ps {
	case "", domain.PaymentPending, domain.PaymentApproved, domain.PaymentRejected:
		out.PaymentStatus = ps
	default:
		return out, fmt.Errorf("%w: unknown payment status %q", domain.ErrInvalidInput, f.PaymentStatus)
	}
	out.Email = normalizeEmail(f.Email)
	return out, nil
}

func (s *PurchaseService) List(ctx context.Context, f ListFilter) ([]domain.Credential, error) {
	filter, err := f.toDomain()
	if err != nil {
		return nil, err
	}
	return s.tickets.List(ctx, filter)
}

func (s *PurchaseService) Get(ctx context.Context, id uuid.UUID) (*domain.Credential, error) {
	return s.tickets.GetByID(ctx, id)
}

// TicketImage renders a printable ticket. Only approved tickets have one.
func (s *PurchaseService) TicketImage(ctx context.Context, id uuid.UUID) ([]byte, error) {
	c, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", id, err)
	}
	if !c.IsApproved() {
		return nil, domain.ErrNotApproved
	}
	event, err := s.events.GetByID(ctx, c.EventID)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", c.EventID, err)
	}
	return s.render(c, event)
}

func (s *PurchaseService) render(c *domain.Credential, event *domain.Event) ([]byte, error) {
	qr, err := s.issuer.Render(c.QRPayload)
	if err != nil {
		return nil, err
	}
	if c.Kind == domain.KindWalkIn {
		return s.renderer.ThermalPNG(c, event, qr)
	}
	return s.renderer.TicketPNG(c, event, qr)
}

func (s *PurchaseService) invalidateSeats(ctx context.Context, eventID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.log.WithError(err).WithField("event_id", eventID).Warn("seat cache invalidation failed")
	}
}

func (s *PurchaseService) publish(ctx context.Context, key string, payload map[string]any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, key, payload); err != nil {
		s.log.WithError(err).WithField("routing_key", key).Warn("publish failed")
	}
}

func parseIDs(ids []string) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no ids given", domain.ErrInvalidInput)
	}
	out := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid id %q", domain.ErrInvalidInput, raw)
		}
		out = append(out, id)
	}
	return out, nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
