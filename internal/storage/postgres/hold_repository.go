package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/encorehq/stagehold/internal/domain"
)

const holdColumns = `id, booking_request_id, bid_id, requester_id, responder_id, status, requested_at, responded_at, starts_at, expires_at, duration_seconds`

type HoldRepository struct {
	pool *pgxpool.Pool
}

func NewHoldRepository(pool *pgxpool.Pool) *HoldRepository {
	return &HoldRepository{pool: pool}
}

func (r *HoldRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *HoldRepository) GetBookingRequest(ctx context.Context, id string) (domain.BookingRequest, error) {
	const query = `SELECT id, artist_id, title, event_date, created_at FROM booking_requests WHERE id = $1`

	var br domain.BookingRequest
	err := r.queryRow(ctx, query, id).
		Scan(&br.ID, &br.ArtistID, &br.Title, &br.EventDate, &br.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.BookingRequest{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.BookingRequest{}, domain.ErrBookingRequestNotFound
		}
		return domain.BookingRequest{}, fmt.Errorf("get booking request: %w", err)
	}
	return br, nil
}

func (r *HoldRepository) CreateHold(ctx context.Context, hold domain.Hold) error {
	const stmt = `
INSERT INTO holds (id, booking_request_id, bid_id, requester_id, status, requested_at, duration_seconds)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt,
		hold.ID,
		hold.BookingRequestID,
		hold.BidID,
		hold.RequesterID,
		hold.Status,
		hold.RequestedAt,
		int64(hold.Duration/time.Second),
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrBidNotFound
		}
		return fmt.Errorf("create hold: %w", err)
	}
	return nil
}

func (r *HoldRepository) GetHoldForUpdate(ctx context.Context, holdID string) (domain.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE id = $1 FOR UPDATE`
	return r.scanHold(r.queryRow(ctx, query, holdID))
}

// ActivateHold flips a pending hold to active only when no sibling hold on
// the booking request is active and the target bid is still pending and
// available. The predicates run inside the store, so the checks and the
// write commit as one statement; the partial unique index on
// (booking_request_id) WHERE status='active' backstops the sibling check.
func (r *HoldRepository) ActivateHold(ctx context.Context, holdID, bookingRequestID, responderID string, startsAt, expiresAt time.Time) error {
	const stmt = `
UPDATE holds
SET status = 'active', responder_id = $3, starts_at = $4, expires_at = $5
WHERE id = $1 AND status = 'pending'
  AND NOT EXISTS (
    SELECT 1 FROM holds sibling
    WHERE sibling.booking_request_id = $2 AND sibling.status = 'active'
  )
  AND EXISTS (
    SELECT 1 FROM bids target
    WHERE target.id = holds.bid_id
      AND target.status = 'pending'
      AND target.reservation_phase = 'available'
  )`

	tag, err := r.exec(ctx, stmt, holdID, bookingRequestID, responderID, startsAt, expiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrHoldConflict
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("activate hold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// The caller holds the hold and bid rows FOR UPDATE and has already
		// verified their states, so zero rows means an active sibling exists.
		return domain.ErrHoldConflict
	}
	return nil
}

func (r *HoldRepository) ResolveHold(ctx context.Context, holdID string, status domain.HoldStatus, respondedAt time.Time) error {
	const stmt = `UPDATE holds SET status = $2, responded_at = $3 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, holdID, status, respondedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("resolve hold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHoldNotFound
	}
	return nil
}

func (r *HoldRepository) FindActiveHold(ctx context.Context, bookingRequestID string) (*domain.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE booking_request_id = $1 AND status = 'active'`

	hold, err := r.scanHold(r.queryRow(ctx, query, bookingRequestID))
	if err != nil {
		if err == domain.ErrHoldNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &hold, nil
}

func (r *HoldRepository) ListExpiredHoldIDs(ctx context.Context, now time.Time) ([]string, error) {
	const query = `SELECT id FROM holds WHERE status = 'active' AND expires_at <= $1 ORDER BY expires_at ASC`

	rows, err := r.query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list expired holds: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired hold: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate expired holds: %w", rows.Err())
	}
	return ids, nil
}

func (r *HoldRepository) scanHold(row pgx.Row) (domain.Hold, error) {
	var (
		h               domain.Hold
		status          string
		durationSeconds int64
	)
	err := row.Scan(
		&h.ID,
		&h.BookingRequestID,
		&h.BidID,
		&h.RequesterID,
		&h.ResponderID,
		&status,
		&h.RequestedAt,
		&h.RespondedAt,
		&h.StartsAt,
		&h.ExpiresAt,
		&durationSeconds,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Hold{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Hold{}, domain.ErrHoldNotFound
		}
		return domain.Hold{}, fmt.Errorf("scan hold: %w", err)
	}
	h.Status = domain.HoldStatus(status)
	h.Duration = time.Duration(durationSeconds) * time.Second
	return h, nil
}

func (r *HoldRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *HoldRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *HoldRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
