package domain

import "errors"

var (
	ErrBookingRequestNotFound = errors.New("booking request not found")
	ErrBidNotFound            = errors.New("bid not found")
	ErrHoldNotFound           = errors.New("hold not found")
	ErrInvalidHoldState       = errors.New("hold is not in a state that allows this action")
	ErrHoldConflict           = errors.New("another hold is already active for this booking request")
	ErrUnauthorized           = errors.New("actor is not allowed to perform this action")
	ErrBidUnavailable         = errors.New("bid is not available for a hold")
	ErrBidAlreadyExists       = errors.New("venue already has a bid on this booking request")
	ErrTitleRequired          = errors.New("booking request title is required")
	ErrInvalidReleaseReason   = errors.New("invalid release reason")
	ErrInvalidDuration        = errors.New("invalid hold duration")
	ErrInvalidID              = errors.New("invalid id")
)
