package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/encorehq/stagehold/internal/domain"
)

const bidColumns = `id, booking_request_id, venue_id, status, reservation_phase, held_by_hold_id, created_at`

type BidRepository struct {
	pool *pgxpool.Pool
}

func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

func (r *BidRepository) GetBidForUpdate(ctx context.Context, bidID string) (domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1 FOR UPDATE`
	return scanBid(r.queryRow(ctx, query, bidID))
}

// ListCompetingBids returns every non-terminal bid on the booking request,
// locked for the duration of the surrounding transaction.
func (r *BidRepository) ListCompetingBids(ctx context.Context, bookingRequestID string) ([]domain.Bid, error) {
	query := `
SELECT ` + bidColumns + `
FROM bids
WHERE booking_request_id = $1 AND status NOT IN ('rejected', 'withdrawn', 'cancelled')
ORDER BY created_at ASC
FOR UPDATE`

	rows, err := r.query(ctx, query, bookingRequestID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list competing bids: %w", err)
	}
	defer rows.Close()

	var bids []domain.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate competing bids: %w", rows.Err())
	}
	return bids, nil
}

func (r *BidRepository) SetReservation(ctx context.Context, bidID string, res domain.Reservation) error {
	const stmt = `UPDATE bids SET reservation_phase = $2, held_by_hold_id = $3 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, bidID, res.Phase(), nullableID(res.HoldID()))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBidNotFound
	}
	return nil
}

func (r *BidRepository) SetBidStatus(ctx context.Context, bidID string, status domain.BidStatus) error {
	const stmt = `UPDATE bids SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, bidID, status)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set bid status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBidNotFound
	}
	return nil
}

func (r *BidRepository) FreezeBids(ctx context.Context, bidIDs []string, holdID string) error {
	if len(bidIDs) == 0 {
		return nil
	}
	const stmt = `
UPDATE bids
SET reservation_phase = 'frozen', held_by_hold_id = $2
WHERE id = ANY($1) AND reservation_phase = 'available'`

	tag, err := r.exec(ctx, stmt, bidIDs, holdID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("freeze bids: %w", err)
	}
	if int(tag.RowsAffected()) != len(bidIDs) {
		return fmt.Errorf("freeze bids: expected %d rows, froze %d", len(bidIDs), tag.RowsAffected())
	}
	return nil
}

// ReleaseBidsHeldBy reverts every bid the hold was holding or freezing back
// to available, leaving lifecycle status untouched.
func (r *BidRepository) ReleaseBidsHeldBy(ctx context.Context, holdID string) ([]string, error) {
	const stmt = `
UPDATE bids
SET reservation_phase = 'available', held_by_hold_id = NULL
WHERE held_by_hold_id = $1
RETURNING id`

	return r.updateReturningIDs(ctx, "release bids", stmt, holdID)
}

// RejectFrozenHeldBy rejects every bid still frozen under the hold. The held
// or provisionally accepted bid is not touched; the caller settles the
// winner separately.
func (r *BidRepository) RejectFrozenHeldBy(ctx context.Context, holdID string) ([]string, error) {
	const stmt = `
UPDATE bids
SET status = 'rejected', reservation_phase = 'available', held_by_hold_id = NULL
WHERE held_by_hold_id = $1 AND reservation_phase = 'frozen'
RETURNING id`

	return r.updateReturningIDs(ctx, "reject frozen bids", stmt, holdID)
}

func (r *BidRepository) CountReservations(ctx context.Context, bookingRequestID string) (frozen, held int, err error) {
	const query = `
SELECT
	COUNT(*) FILTER (WHERE reservation_phase = 'frozen'),
	COUNT(*) FILTER (WHERE reservation_phase IN ('held', 'accepted_held'))
FROM bids
WHERE booking_request_id = $1`

	if err := r.queryRow(ctx, query, bookingRequestID).Scan(&frozen, &held); err != nil {
		if isInvalidUUID(err) {
			return 0, 0, domain.ErrInvalidID
		}
		return 0, 0, fmt.Errorf("count reservations: %w", err)
	}
	return frozen, held, nil
}

func (r *BidRepository) updateReturningIDs(ctx context.Context, op, stmt string, args ...any) ([]string, error) {
	rows, err := r.query(ctx, stmt, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, rows.Err())
	}
	return ids, nil
}

func scanBid(row pgx.Row) (domain.Bid, error) {
	var (
		b      domain.Bid
		status string
		phase  string
		heldBy *string
	)
	err := row.Scan(&b.ID, &b.BookingRequestID, &b.VenueID, &status, &phase, &heldBy, &b.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Bid{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Bid{}, domain.ErrBidNotFound
		}
		return domain.Bid{}, fmt.Errorf("scan bid: %w", err)
	}

	holdID := ""
	if heldBy != nil {
		holdID = *heldBy
	}
	res, err := domain.NewReservation(domain.ReservationPhase(phase), holdID)
	if err != nil {
		return domain.Bid{}, fmt.Errorf("scan bid %s: %w", b.ID, err)
	}
	b.Status = domain.BidStatus(status)
	b.Reservation = res
	return b, nil
}

func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func (r *BidRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *BidRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *BidRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
