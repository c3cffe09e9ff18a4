package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

const eventColumns = `id, name, description, date, time, location, category, price, image_url, external_link, available_seats, seat_layout, created_at`

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var e domain.Event
	var layout []byte
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.Date,
		&e.Time,
		&e.Location,
		&e.Category,
		&e.Price,
		&e.ImageURL,
		&e.ExternalLink,
		&e.AvailableSeats,
		&layout,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(layout) > 0 {
		if err := json.Unmarshal(layout, &e.SeatLayout); err != nil {
			return nil, fmt.Errorf("decode seat layout of event %s: %w", e.ID, err)
		}
	}
	return &e, nil
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	layout, err := json.Marshal(e.SeatLayout)
	if err != nil {
		return fmt.Errorf("encode seat layout: %w", err)
	}

	query := `
	INSERT INTO events (` + eventColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.Name, e.Description, e.Date, e.Time, e.Location, e.Category,
		e.Price, e.ImageURL, e.ExternalLink, e.AvailableSeats, layout, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event %s: %w", id, err)
	}
	return e, nil
}

func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *EventRepository) Update(ctx context.Context, e *domain.Event) error {
	layout, err := json.Marshal(e.SeatLayout)
	if err != nil {
		return fmt.Errorf("encode seat layout: %w", err)
	}

	query := `
	UPDATE events
	SET name = $1, description = $2, date = $3, time = $4, location = $5, category = $6,
		price = $7, image_url = $8, external_link = $9, available_seats = $10, seat_layout = $11
	WHERE id = $12
	`
	res, err := r.db.ExecContext(ctx, query,
		e.Name, e.Description, e.Date, e.Time, e.Location, e.Category,
		e.Price, e.ImageURL, e.ExternalLink, e.AvailableSeats, layout, e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event %s: %w", e.ID, err)
	}
	return expectOneRow(res)
}

func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	return expectOneRow(res)
}

// AdjustAvailableSeats is a guarded update: the row only changes while the
// result stays non-negative.
func (r *EventRepository) AdjustAvailableSeats(ctx context.Context, id uuid.UUID, delta int) error {
	query := `
	UPDATE events
	SET available_seats = available_seats + $1
	WHERE id = $2 AND available_seats + $1 >= 0
	`
	res, err := r.db.ExecContext(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("failed to adjust seats of event %s: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInsufficientCapacity
}

func expectOneRow(res sql.Result) error {
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
