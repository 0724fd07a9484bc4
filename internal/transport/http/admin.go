package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/encorehq/stagehold/internal/app"
	"github.com/encorehq/stagehold/internal/domain"
)

// AdminAPI covers the booking-request and bid seeding surface.
type AdminAPI interface {
	CreateBookingRequest(ctx context.Context, in app.CreateBookingRequestInput) (domain.BookingRequest, error)
	ListBookingRequests(ctx context.Context) ([]domain.BookingRequest, error)
	CreateBid(ctx context.Context, in app.CreateBidInput) (domain.Bid, error)
	ListBids(ctx context.Context, bookingRequestID string) ([]domain.Bid, error)
}

// HandleCreateBookingRequest returns the handler for POST /admin/booking-requests.
func HandleCreateBookingRequest(svc AdminAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookingRequestRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		created, err := svc.CreateBookingRequest(r.Context(), app.CreateBookingRequestInput{
			ArtistID:  req.ArtistID,
			Title:     req.Title,
			EventDate: req.EventDate,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toBookingRequestResponse(created))
	}
}

// HandleListBookingRequests returns the handler for GET /admin/booking-requests.
func HandleListBookingRequests(svc AdminAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requests, err := svc.ListBookingRequests(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]bookingRequestResponse, 0, len(requests))
		for _, br := range requests {
			out = append(out, toBookingRequestResponse(br))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// HandleCreateBid returns the handler for POST /admin/booking-requests/{id}/bids.
func HandleCreateBid(svc AdminAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBidRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		bid, err := svc.CreateBid(r.Context(), app.CreateBidInput{
			BookingRequestID: chi.URLParam(r, "id"),
			VenueID:          req.VenueID,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toBidResponse(bid))
	}
}

// HandleListBids returns the handler for GET /admin/booking-requests/{id}/bids.
func HandleListBids(svc AdminAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bids, err := svc.ListBids(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]bidResponse, 0, len(bids))
		for _, bid := range bids {
			out = append(out, toBidResponse(bid))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type createBookingRequestRequest struct {
	ArtistID  string     `json:"artist_id"`
	Title     string     `json:"title"`
	EventDate *time.Time `json:"event_date,omitempty"`
}

type bookingRequestResponse struct {
	ID        string    `json:"id"`
	ArtistID  string    `json:"artist_id"`
	Title     string    `json:"title"`
	EventDate time.Time `json:"event_date"`
}

func toBookingRequestResponse(br domain.BookingRequest) bookingRequestResponse {
	return bookingRequestResponse{
		ID:        br.ID,
		ArtistID:  br.ArtistID,
		Title:     br.Title,
		EventDate: br.EventDate,
	}
}

type createBidRequest struct {
	VenueID string `json:"venue_id"`
}

func toBidResponse(bid domain.Bid) bidResponse {
	return bidResponse{
		ID:               bid.ID,
		BookingRequestID: bid.BookingRequestID,
		VenueID:          bid.VenueID,
		Status:           string(bid.Status),
		ReservationPhase: string(bid.Reservation.Phase()),
		HeldByHoldID:     bid.Reservation.HoldID(),
	}
}
