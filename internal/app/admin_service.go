package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/encorehq/stagehold/internal/clock"
	"github.com/encorehq/stagehold/internal/domain"
)

type AdminRepository interface {
	CreateBookingRequest(ctx context.Context, request domain.BookingRequest) error
	ListBookingRequests(ctx context.Context) ([]domain.BookingRequest, error)
	CreateBid(ctx context.Context, bid domain.Bid) error
	ListBidsByRequest(ctx context.Context, bookingRequestID string) ([]domain.Bid, error)
}

// AdminService seeds and inspects booking requests and bids. It never
// touches hold status or reservation phase; those belong to HoldService.
type AdminService struct {
	repo  AdminRepository
	clock clock.Clock
}

func NewAdminService(repo AdminRepository, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:  repo,
		clock: clk,
	}
}

type CreateBookingRequestInput struct {
	ArtistID  string
	Title     string
	EventDate *time.Time
}

func (s *AdminService) CreateBookingRequest(ctx context.Context, in CreateBookingRequestInput) (domain.BookingRequest, error) {
	if in.ArtistID == "" {
		return domain.BookingRequest{}, domain.ErrInvalidID
	}
	if in.Title == "" {
		return domain.BookingRequest{}, domain.ErrTitleRequired
	}
	eventDate := s.clock.Now()
	if in.EventDate != nil {
		eventDate = *in.EventDate
	}

	request := domain.BookingRequest{
		ID:        uuid.NewString(),
		ArtistID:  in.ArtistID,
		Title:     in.Title,
		EventDate: eventDate,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.CreateBookingRequest(ctx, request); err != nil {
		return domain.BookingRequest{}, err
	}
	return request, nil
}

func (s *AdminService) ListBookingRequests(ctx context.Context) ([]domain.BookingRequest, error) {
	return s.repo.ListBookingRequests(ctx)
}

type CreateBidInput struct {
	BookingRequestID string
	VenueID          string
}

func (s *AdminService) CreateBid(ctx context.Context, in CreateBidInput) (domain.Bid, error) {
	if in.BookingRequestID == "" || in.VenueID == "" {
		return domain.Bid{}, domain.ErrInvalidID
	}

	bid := domain.Bid{
		ID:               uuid.NewString(),
		BookingRequestID: in.BookingRequestID,
		VenueID:          in.VenueID,
		Status:           domain.BidStatusPending,
		Reservation:      domain.Available(),
		CreatedAt:        s.clock.Now(),
	}

	if err := s.repo.CreateBid(ctx, bid); err != nil {
		return domain.Bid{}, err
	}
	return bid, nil
}

func (s *AdminService) ListBids(ctx context.Context, bookingRequestID string) ([]domain.Bid, error) {
	if bookingRequestID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListBidsByRequest(ctx, bookingRequestID)
}
