package domain

import "time"

// BookingRequest is the slot competing venues bid to fill. The artist who
// opened it is the only party allowed to grant holds against it.
type BookingRequest struct {
	ID        string
	ArtistID  string
	Title     string
	EventDate time.Time
	CreatedAt time.Time
}
