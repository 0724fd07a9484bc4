package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/encorehq/stagehold/internal/domain"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) CreateBookingRequest(ctx context.Context, request domain.BookingRequest) error {
	const stmt = `
INSERT INTO booking_requests (id, artist_id, title, event_date, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, stmt, request.ID, request.ArtistID, request.Title, request.EventDate, request.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create booking request: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListBookingRequests(ctx context.Context) ([]domain.BookingRequest, error) {
	const query = `
SELECT id, artist_id, title, event_date, created_at
FROM booking_requests
ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list booking requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.BookingRequest
	for rows.Next() {
		var br domain.BookingRequest
		if err := rows.Scan(&br.ID, &br.ArtistID, &br.Title, &br.EventDate, &br.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking request: %w", err)
		}
		requests = append(requests, br)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate booking requests: %w", rows.Err())
	}
	return requests, nil
}

func (r *AdminRepository) CreateBid(ctx context.Context, bid domain.Bid) error {
	const stmt = `
INSERT INTO bids (id, booking_request_id, venue_id, status, reservation_phase, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, stmt, bid.ID, bid.BookingRequestID, bid.VenueID, bid.Status, bid.Reservation.Phase(), bid.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isUniqueViolation(err) {
			return domain.ErrBidAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrBookingRequestNotFound
		}
		return fmt.Errorf("create bid: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListBidsByRequest(ctx context.Context, bookingRequestID string) ([]domain.Bid, error) {
	const existsQuery = `SELECT EXISTS (SELECT 1 FROM booking_requests WHERE id = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, existsQuery, bookingRequestID).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("check booking request: %w", err)
	}
	if !exists {
		return nil, domain.ErrBookingRequestNotFound
	}

	query := `
SELECT ` + bidColumns + `
FROM bids
WHERE booking_request_id = $1
ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, bookingRequestID)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
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
		return nil, fmt.Errorf("iterate bids: %w", rows.Err())
	}
	return bids, nil
}
