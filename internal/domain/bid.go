package domain

import "time"

type BidStatus string

const (
	BidStatusPending   BidStatus = "pending"
	BidStatusAccepted  BidStatus = "accepted"
	BidStatusRejected  BidStatus = "rejected"
	BidStatusWithdrawn BidStatus = "withdrawn"
	BidStatusCancelled BidStatus = "cancelled"
)

// Terminal reports whether the bid can no longer win the booking request.
func (s BidStatus) Terminal() bool {
	switch s {
	case BidStatusRejected, BidStatusWithdrawn, BidStatusCancelled:
		return true
	}
	return false
}

// Bid is one venue's competing claim against a booking request.
type Bid struct {
	ID               string
	BookingRequestID string
	VenueID          string
	Status           BidStatus
	Reservation      Reservation
	CreatedAt        time.Time
}
