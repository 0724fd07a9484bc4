package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/encorehq/stagehold/internal/app"
	"github.com/encorehq/stagehold/internal/domain"
)

func TestHandleCreateBookingRequest(t *testing.T) {
	t.Parallel()

	created := domain.BookingRequest{
		ID:        "req-1",
		ArtistID:  "artist-1",
		Title:     "summer showcase",
		EventDate: time.Date(2026, 7, 10, 20, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "created",
			body:           `{"artist_id":"artist-1","title":"summer showcase"}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"title":"summer showcase"`,
		},
		{
			name:           "malformed body",
			body:           `{"artist_id":`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidRequestBody,
		},
		{
			name:           "missing title",
			body:           `{"artist_id":"artist-1"}`,
			serviceErr:     domain.ErrTitleRequired,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeTitleRequired,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubAdminService{request: created, err: tt.serviceErr}
			router := newTestRouter(&stubHoldService{}, svc)

			req := httptest.NewRequest(http.MethodPost, "/admin/booking-requests", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestHandleCreateBid(t *testing.T) {
	t.Parallel()

	created := domain.Bid{
		ID:               "bid-1",
		BookingRequestID: "req-1",
		VenueID:          "venue-1",
		Status:           domain.BidStatusPending,
		Reservation:      domain.Available(),
	}

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "created",
			body:           `{"venue_id":"venue-1"}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"reservation_phase":"available"`,
		},
		{
			name:           "duplicate venue",
			body:           `{"venue_id":"venue-1"}`,
			serviceErr:     domain.ErrBidAlreadyExists,
			expectedStatus: http.StatusConflict,
			expectedSubstr: codeBidAlreadyExists,
		},
		{
			name:           "unknown booking request",
			body:           `{"venue_id":"venue-1"}`,
			serviceErr:     domain.ErrBookingRequestNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubAdminService{bid: created, err: tt.serviceErr}
			router := newTestRouter(&stubHoldService{}, svc)

			req := httptest.NewRequest(http.MethodPost, "/admin/booking-requests/req-1/bids", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
			if tt.serviceErr == nil {
				if svc.gotRequestID != "req-1" {
					t.Fatalf("expected url id passed through, got %q", svc.gotRequestID)
				}
			}
		})
	}
}

func TestHandleListBids(t *testing.T) {
	t.Parallel()

	svc := &stubAdminService{
		bids: []domain.Bid{
			{ID: "bid-1", BookingRequestID: "req-1", VenueID: "venue-1", Status: domain.BidStatusPending, Reservation: domain.Frozen("hold-1")},
		},
	}
	router := newTestRouter(&stubHoldService{}, svc)

	req := httptest.NewRequest(http.MethodGet, "/admin/booking-requests/req-1/bids", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"held_by_hold_id":"hold-1"`) {
		t.Fatalf("expected frozen bid to show owning hold, got %q", rec.Body.String())
	}
}

func TestRouterNotFound(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubHoldService{}, &stubAdminService{})

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), codeNotFound) {
		t.Fatalf("expected body to contain %q, got %q", codeNotFound, rec.Body.String())
	}
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubHoldService{}, &stubAdminService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

type stubAdminService struct {
	request domain.BookingRequest
	bid     domain.Bid
	bids    []domain.Bid
	err     error

	gotRequestID string
}

func (s *stubAdminService) CreateBookingRequest(_ context.Context, _ app.CreateBookingRequestInput) (domain.BookingRequest, error) {
	return s.request, s.err
}

func (s *stubAdminService) ListBookingRequests(context.Context) ([]domain.BookingRequest, error) {
	return []domain.BookingRequest{s.request}, s.err
}

func (s *stubAdminService) CreateBid(_ context.Context, in app.CreateBidInput) (domain.Bid, error) {
	s.gotRequestID = in.BookingRequestID
	return s.bid, s.err
}

func (s *stubAdminService) ListBids(_ context.Context, bookingRequestID string) ([]domain.Bid, error) {
	s.gotRequestID = bookingRequestID
	return s.bids, s.err
}
