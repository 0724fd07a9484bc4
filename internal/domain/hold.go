package domain

import "time"

type HoldStatus string

const (
	HoldStatusPending   HoldStatus = "pending"
	HoldStatusActive    HoldStatus = "active"
	HoldStatusDeclined  HoldStatus = "declined"
	HoldStatusCancelled HoldStatus = "cancelled"
	HoldStatusExpired   HoldStatus = "expired"
)

// Terminal reports whether the hold has reached an absorbing state.
func (s HoldStatus) Terminal() bool {
	switch s {
	case HoldStatusDeclined, HoldStatusCancelled, HoldStatusExpired:
		return true
	}
	return false
}

// ReleaseReason names why a hold ended without confirmation.
type ReleaseReason string

const (
	ReleaseDeclined  ReleaseReason = "declined"
	ReleaseCancelled ReleaseReason = "cancelled"
	ReleaseExpired   ReleaseReason = "expired"
)

func (r ReleaseReason) Valid() bool {
	switch r {
	case ReleaseDeclined, ReleaseCancelled, ReleaseExpired:
		return true
	}
	return false
}

// HoldStatus maps the reason onto the terminal status it produces.
func (r ReleaseReason) HoldStatus() HoldStatus {
	switch r {
	case ReleaseDeclined:
		return HoldStatusDeclined
	case ReleaseExpired:
		return HoldStatusExpired
	default:
		return HoldStatusCancelled
	}
}

// Hold is a time-boxed exclusive reservation attempt against a booking
// request. At most one hold per booking request may be active at a time;
// the partial unique index on holds enforces it.
type Hold struct {
	ID               string
	BookingRequestID string
	BidID            string
	RequesterID      string
	ResponderID      *string
	Status           HoldStatus
	RequestedAt      time.Time
	RespondedAt      *time.Time
	StartsAt         *time.Time
	ExpiresAt        *time.Time
	Duration         time.Duration
}
