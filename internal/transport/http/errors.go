package http

import (
	"encoding/json"
	"net/http"

	"github.com/encorehq/stagehold/internal/domain"
)

const (
	codeNotFound               = "not_found"
	codeInvalidRequestBody     = "invalid_request_body"
	codeInvalidID              = "invalid_id"
	codeInvalidDuration        = "invalid_duration"
	codeInvalidReleaseReason   = "invalid_release_reason"
	codeActorRequired          = "actor_required"
	codeTitleRequired          = "title_required"
	codeBidUnavailable         = "bid_unavailable"
	codeBidAlreadyExists       = "bid_already_exists"
	codeHoldConflict           = "hold_conflict"
	codeInvalidHoldState       = "invalid_hold_state"
	codeForbidden              = "forbidden"
	codeBookingRequestNotFound = "booking_request_not_found"
	codeBidNotFound            = "bid_not_found"
	codeHoldNotFound           = "hold_not_found"
	codeInternalError          = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses:
// not-found to 404, benign races and conflicts to 409, authorization to 403,
// validation to 400, anything else to 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrBookingRequestNotFound:
		writeError(w, http.StatusNotFound, codeBookingRequestNotFound, err.Error())
	case domain.ErrBidNotFound:
		writeError(w, http.StatusNotFound, codeBidNotFound, err.Error())
	case domain.ErrHoldNotFound:
		writeError(w, http.StatusNotFound, codeHoldNotFound, err.Error())
	case domain.ErrHoldConflict:
		writeError(w, http.StatusConflict, codeHoldConflict, err.Error())
	case domain.ErrInvalidHoldState:
		writeError(w, http.StatusConflict, codeInvalidHoldState, err.Error())
	case domain.ErrBidUnavailable:
		writeError(w, http.StatusConflict, codeBidUnavailable, err.Error())
	case domain.ErrBidAlreadyExists:
		writeError(w, http.StatusConflict, codeBidAlreadyExists, err.Error())
	case domain.ErrUnauthorized:
		writeError(w, http.StatusForbidden, codeForbidden, err.Error())
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case domain.ErrInvalidDuration:
		writeError(w, http.StatusBadRequest, codeInvalidDuration, err.Error())
	case domain.ErrInvalidReleaseReason:
		writeError(w, http.StatusBadRequest, codeInvalidReleaseReason, err.Error())
	case domain.ErrTitleRequired:
		writeError(w, http.StatusBadRequest, codeTitleRequired, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
