package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	// AdjustAvailableSeats adds delta to the event's available seats. A
	// negative result is refused with domain.ErrInsufficientCapacity.
	AdjustAvailableSeats(ctx context.Context, id uuid.UUID, delta int) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CredentialRepository stores one kind of credential: tickets (walk-ins
// included) or accreditations.
type CredentialRepository interface {
	CreateBatch(ctx context.Context, creds []*domain.Credential) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Credential, error)
	GetByCode(ctx context.Context, code string) (*domain.Credential, error)
	List(ctx context.Context, filter domain.CredentialFilter) ([]domain.Credential, error)

	// UpdatePaymentStatus moves a record from one payment status to another.
	// It returns domain.ErrStateConflict when the record is not in from.
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, from, to domain.PaymentStatus, at time.Time) error
	UpdateIssuance(ctx context.Context, id uuid.UUID, code, hash, payload string) error

	// RecordAccess sets entry_status from the action and appends entry to the
	// history, but only while entry_status still equals expected. Otherwise it
	// returns domain.ErrStateConflict and changes nothing.
	RecordAccess(ctx context.Context, id uuid.UUID, expected domain.EntryStatus, entry domain.AccessEntry) error

	Delete(ctx context.Context, id uuid.UUID) error

	// HeldSeats lists the seats of every non-rejected record of the event.
	HeldSeats(ctx context.Context, eventID uuid.UUID) ([]domain.SeatHold, error)
	// NextSequence is one past the highest sequence issued for the event.
	NextSequence(ctx context.Context, eventID uuid.UUID) (int, error)
}

type AccreditationCategoryRepository interface {
	Create(ctx context.Context, category *domain.AccreditationCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AccreditationCategory, error)
	List(ctx context.Context) ([]domain.AccreditationCategory, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AdminRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
	// Create returns domain.ErrAlreadyExists when the username is taken.
	Create(ctx context.Context, admin *domain.Admin) error
	List(ctx context.Context) ([]domain.Admin, error)
	Delete(ctx context.Context, username string) error
}

type PaymentMethodRepository interface {
	Create(ctx context.Context, method *domain.PaymentMethod) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error)
	List(ctx context.Context) ([]domain.PaymentMethod, error)
	Update(ctx context.Context, method *domain.PaymentMethod) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TableCategoryRepository interface {
	Create(ctx context.Context, category *domain.TableCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TableCategory, error)
	List(ctx context.Context) ([]domain.TableCategory, error)
	Update(ctx context.Context, category *domain.TableCategory) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SiteConfigRepository holds the single site document. Get returns
// domain.ErrNotFound until the first Save.
type SiteConfigRepository interface {
	Get(ctx context.Context) (*domain.SiteConfig, error)
	Save(ctx context.Context, cfg *domain.SiteConfig) error
}
