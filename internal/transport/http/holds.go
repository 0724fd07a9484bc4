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

// actorHeader carries the identity resolved by the upstream auth layer.
const actorHeader = "X-Actor-ID"

// HoldRequester is the minimal interface needed to request a hold.
type HoldRequester interface {
	RequestHold(ctx context.Context, in app.RequestHoldInput) (domain.Hold, error)
}

// HandleRequestHold returns the handler for POST /holds.
func HandleRequestHold(svc HoldRequester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := r.Header.Get(actorHeader)
		if actor == "" {
			writeError(w, http.StatusBadRequest, codeActorRequired, "missing "+actorHeader+" header")
			return
		}

		var req requestHoldRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.BookingRequestID == "" || req.BidID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "booking_request_id and bid_id are required")
			return
		}

		var duration time.Duration
		if req.Duration != "" {
			d, err := time.ParseDuration(req.Duration)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidDuration, "invalid duration")
				return
			}
			duration = d
		}

		hold, err := svc.RequestHold(r.Context(), app.RequestHoldInput{
			BookingRequestID: req.BookingRequestID,
			BidID:            req.BidID,
			ActorID:          actor,
			Duration:         duration,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, holdResponse{
			ID:               hold.ID,
			BookingRequestID: hold.BookingRequestID,
			BidID:            hold.BidID,
			Status:           string(hold.Status),
			RequestedAt:      hold.RequestedAt,
		})
	}
}

// HoldGranter is the minimal interface needed to grant a hold.
type HoldGranter interface {
	Grant(ctx context.Context, holdID, actorID string) (app.GrantResult, error)
}

// HandleGrantHold returns the handler for POST /holds/{id}/grant.
func HandleGrantHold(svc HoldGranter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := r.Header.Get(actorHeader)
		if actor == "" {
			writeError(w, http.StatusBadRequest, codeActorRequired, "missing "+actorHeader+" header")
			return
		}

		res, err := svc.Grant(r.Context(), chi.URLParam(r, "id"), actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, grantHoldResponse{
			ID:           res.Hold.ID,
			Status:       string(res.Hold.Status),
			ExpiresAt:    res.Hold.ExpiresAt,
			HeldBidID:    res.HeldBidID,
			FrozenBidIDs: res.FrozenBidIDs,
		})
	}
}

// HoldAccepter is the minimal interface needed to provisionally accept.
type HoldAccepter interface {
	AcceptProvisionally(ctx context.Context, holdID string) (domain.Bid, error)
}

// HandleAcceptHold returns the handler for POST /holds/{id}/accept.
func HandleAcceptHold(svc HoldAccepter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bid, err := svc.AcceptProvisionally(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, bidResponse{
			ID:               bid.ID,
			BookingRequestID: bid.BookingRequestID,
			VenueID:          bid.VenueID,
			Status:           string(bid.Status),
			ReservationPhase: string(bid.Reservation.Phase()),
			HeldByHoldID:     bid.Reservation.HoldID(),
		})
	}
}

// HoldConfirmer is the minimal interface needed to confirm a hold.
type HoldConfirmer interface {
	Confirm(ctx context.Context, holdID string) (app.ConfirmResult, error)
}

// HandleConfirmHold returns the handler for POST /holds/{id}/confirm.
func HandleConfirmHold(svc HoldConfirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Confirm(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, confirmHoldResponse{
			WinningBidID:   res.WinningBidID,
			RejectedBidIDs: res.RejectedBidIDs,
		})
	}
}

// HoldReleaser is the minimal interface needed to release a hold.
type HoldReleaser interface {
	Release(ctx context.Context, holdID string, reason domain.ReleaseReason) (app.ReleaseResult, error)
}

// HandleReleaseHold returns the handler for POST /holds/{id}/release.
func HandleReleaseHold(svc HoldReleaser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req releaseHoldRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.Release(r.Context(), chi.URLParam(r, "id"), domain.ReleaseReason(req.Reason))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, releaseHoldResponse{
			Released:       res.Released,
			ReopenedBidIDs: res.ReopenedBidIDs,
		})
	}
}

// HoldStateQuerier is the minimal interface needed to read hold state.
type HoldStateQuerier interface {
	QueryState(ctx context.Context, bookingRequestID string) (app.HoldState, error)
}

// HandleHoldState returns the handler for GET /booking-requests/{id}/hold-state.
func HandleHoldState(svc HoldStateQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := svc.QueryState(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := holdStateResponse{
			FrozenBids: state.FrozenBids,
			HeldBids:   state.HeldBids,
		}
		if state.ActiveHold != nil {
			resp.ActiveHold = &activeHoldResponse{
				ID:        state.ActiveHold.ID,
				ExpiresAt: state.ActiveHold.ExpiresAt,
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type requestHoldRequest struct {
	BookingRequestID string `json:"booking_request_id"`
	BidID            string `json:"bid_id"`
	Duration         string `json:"duration,omitempty"`
}

type holdResponse struct {
	ID               string    `json:"id"`
	BookingRequestID string    `json:"booking_request_id"`
	BidID            string    `json:"bid_id"`
	Status           string    `json:"status"`
	RequestedAt      time.Time `json:"requested_at"`
}

type grantHoldResponse struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	ExpiresAt    *time.Time `json:"expires_at"`
	HeldBidID    string     `json:"held_bid_id"`
	FrozenBidIDs []string   `json:"frozen_bid_ids"`
}

type bidResponse struct {
	ID               string `json:"id"`
	BookingRequestID string `json:"booking_request_id"`
	VenueID          string `json:"venue_id"`
	Status           string `json:"status"`
	ReservationPhase string `json:"reservation_phase"`
	HeldByHoldID     string `json:"held_by_hold_id,omitempty"`
}

type confirmHoldResponse struct {
	WinningBidID   string   `json:"winning_bid_id"`
	RejectedBidIDs []string `json:"rejected_bid_ids"`
}

type releaseHoldRequest struct {
	Reason string `json:"reason"`
}

type releaseHoldResponse struct {
	Released       bool     `json:"released"`
	ReopenedBidIDs []string `json:"reopened_bid_ids"`
}

type activeHoldResponse struct {
	ID        string     `json:"id"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type holdStateResponse struct {
	ActiveHold *activeHoldResponse `json:"active_hold,omitempty"`
	FrozenBids int                 `json:"frozen_bids"`
	HeldBids   int                 `json:"held_bids"`
}
