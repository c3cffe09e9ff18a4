package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

const (
	TicketsTable        = "tickets"
	AccreditationsTable = "accreditations"
)

const credentialColumns = `id, kind, event_id, code, integrity_hash, qr_payload, payment_status, entry_status,
	access_history, holder_name, holder_email, holder_phone, sequence, details, version, created_at, approved_at`

// CredentialRepository serves one credential table. Tickets and walk-ins use
// TicketsTable, badges AccreditationsTable.
type CredentialRepository struct {
	db    *sql.DB
	table string
}

func NewCredentialRepository(db *sql.DB, table string) *CredentialRepository {
	return &CredentialRepository{db: db, table: table}
}

func scanCredential(row rowScanner) (*domain.Credential, error) {
	var c domain.Credential
	var history, details []byte
	var sequence int
	var approvedAt sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.Kind,
		&c.EventID,
		&c.Code,
		&c.IntegrityHash,
		&c.QRPayload,
		&c.PaymentStatus,
		&c.EntryStatus,
		&history,
		&c.Holder.Name,
		&c.Holder.Email,
		&c.Holder.Phone,
		&sequence,
		&details,
		&c.Version,
		&c.CreatedAt,
		&approvedAt,
	)
	if err != nil {
		return nil, err
	}

	if approvedAt.Valid {
		c.ApprovedAt = &approvedAt.Time
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &c.AccessHistory); err != nil {
			return nil, fmt.Errorf("decode access history of %s: %w", c.ID, err)
		}
	}

	switch c.Kind.StoreKind() {
	case domain.KindTicket:
		c.Ticket = &domain.TicketDetails{}
		if err := json.Unmarshal(details, c.Ticket); err != nil {
			return nil, fmt.Errorf("decode ticket details of %s: %w", c.ID, err)
		}
		c.Ticket.Sequence = sequence
	case domain.KindAccreditation:
		c.Accreditation = &domain.AccreditationDetails{}
		if err := json.Unmarshal(details, c.Accreditation); err != nil {
			return nil, fmt.Errorf("decode accreditation details of %s: %w", c.ID, err)
		}
	}
	return &c, nil
}

func detailsOf(c *domain.Credential) ([]byte, int, error) {
	switch {
	case c.Ticket != nil:
		b, err := json.Marshal(c.Ticket)
		return b, c.Ticket.Sequence, err
	case c.Accreditation != nil:
		b, err := json.Marshal(c.Accreditation)
		return b, 0, err
	}
	return []byte("{}"), 0, nil
}

func (r *CredentialRepository) CreateBatch(ctx context.Context, creds []*domain.Credential) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	query := `INSERT INTO ` + r.table + ` (` + credentialColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", r.table, err)
	}

	defer stmt.Close()

	for _, c := range creds {
		if c.Version == 0 {
			c.Version = 1
		}
		history, err := json.Marshal(nonNilHistory(c.AccessHistory))
		if err != nil {
			return fmt.Errorf("encode access history: %w", err)
		}
		details, sequence, err := detailsOf(c)
		if err != nil {
			return fmt.Errorf("encode details: %w", err)
		}

		_, err = stmt.ExecContext(ctx,
			c.ID, c.Kind, c.EventID, c.Code, c.IntegrityHash, c.QRPayload, c.PaymentStatus, c.EntryStatus,
			history, c.Holder.Name, c.Holder.Email, c.Holder.Phone, sequence, details, c.Version,
			c.CreatedAt, c.ApprovedAt,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("credential code %s already exists", c.Code)
		}
		if err != nil {
			return fmt.Errorf("failed to insert credential %s: %w", c.Code, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *CredentialRepository) getOne(ctx context.Context, where string, arg any) (*domain.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM ` + r.table + ` WHERE ` + where
	c, err := scanCredential(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load from %s: %w", r.table, err)
	}
	return c, nil
}

func (r *CredentialRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Credential, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *CredentialRepository) GetByCode(ctx context.Context, code string) (*domain.Credential, error) {
	return r.getOne(ctx, `code = $1`, code)
}

func (r *CredentialRepository) List(ctx context.Context, filter domain.CredentialFilter) ([]domain.Credential, error) {
	var conds []string
	var args []any
	if filter.EventID != nil {
		args = append(args, *filter.EventID)
		conds = append(conds, fmt.Sprintf("event_id = $%d", len(args)))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		conds = append(conds, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		conds = append(conds, fmt.Sprintf("holder_email = $%d", len(args)))
	}

	query := `SELECT ` + credentialColumns + ` FROM ` + r.table
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, code`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.table, err)
	}
	defer rows.Close()

	var out []domain.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *CredentialRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, from, to domain.PaymentStatus, at time.Time) error {
	var approvedAt *time.Time
	if to == domain.PaymentApproved {
		approvedAt = &at
	}

	query := `
	UPDATE ` + r.table + `
	SET payment_status = $1,
		approved_at = COALESCE($2, approved_at),
		version = version + 1
	WHERE id = $3 AND payment_status = $4
	`
	res, err := r.db.ExecContext(ctx, query, to, approvedAt, id, from)
	if err != nil {
		return fmt.Errorf("failed to update payment of %s: %w", id, err)
	}
	return r.conflictOrMissing(ctx, res, id)
}

func (r *CredentialRepository) UpdateIssuance(ctx context.Context, id uuid.UUID, code, hash, payload string) error {
	query := `
	UPDATE ` + r.table + `
	SET code = $1, integrity_hash = $2, qr_payload = $3, version = version + 1
	WHERE id = $4
	`
	res, err := r.db.ExecContext(ctx, query, code, hash, payload, id)
	if err != nil {
		return fmt.Errorf("failed to update issuance of %s: %w", id, err)
	}
	return expectOneRow(res)
}

// RecordAccess only touches the row while entry_status still equals
// expected.
func (r *CredentialRepository) RecordAccess(ctx context.Context, id uuid.UUID, expected domain.EntryStatus, entry domain.AccessEntry) error {
	next := domain.EntryOutside
	if entry.Action == domain.AccessEnter {
		next = domain.EntryInside
	}
	appended, err := json.Marshal([]domain.AccessEntry{entry})
	if err != nil {
		return fmt.Errorf("encode access entry: %w", err)
	}

	query := `
	UPDATE ` + r.table + `
	SET entry_status = $1,
		access_history = access_history || $2::jsonb,
		version = version + 1
	WHERE id = $3 AND entry_status = $4
	`
	res, err := r.db.ExecContext(ctx, query, next, appended, id, expected)
	if err != nil {
		return fmt.Errorf("failed to record access of %s: %w", id, err)
	}
	return r.conflictOrMissing(ctx, res, id)
}

func (r *CredentialRepository) conflictOrMissing(ctx context.Context, res sql.Result, id uuid.UUID) error {
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM `+r.table+` WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrStateConflict
}

func (r *CredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	return expectOneRow(res)
}

func (r *CredentialRepository) HeldSeats(ctx context.Context, eventID uuid.UUID) ([]domain.SeatHold, error) {
	query := `
	SELECT details->>'seat', payment_status
	FROM ` + r.table + `
	WHERE event_id = $1 AND payment_status <> 'rejected' AND COALESCE(details->>'seat', '') <> ''
	ORDER BY 1
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load held seats: %w", err)
	}
	defer rows.Close()

	var out []domain.SeatHold
	for rows.Next() {
		var h domain.SeatHold
		if err := rows.Scan(&h.Seat, &h.PaymentStatus); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *CredentialRepository) NextSequence(ctx context.Context, eventID uuid.UUID) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM `+r.table+` WHERE event_id = $1`, eventID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next sequence: %w", err)
	}
	return next, nil
}

func nonNilHistory(h []domain.AccessEntry) []domain.AccessEntry {
	if h == nil {
		return []domain.AccessEntry{}
	}
	return h
}
