package domain

import "fmt"

// ReservationPhase describes a bid's standing relative to the hold system,
// orthogonal to its lifecycle status.
type ReservationPhase string

const (
	PhaseAvailable    ReservationPhase = "available"
	PhaseFrozen       ReservationPhase = "frozen"
	PhaseHeld         ReservationPhase = "held"
	PhaseAcceptedHeld ReservationPhase = "accepted_held"
)

// Reservation pairs a phase with the hold that owns it. The zero value is
// available. Non-available phases always carry the owning hold id; the
// constructors make the broken combinations unrepresentable.
type Reservation struct {
	phase  ReservationPhase
	holdID string
}

// Available returns the unreserved state.
func Available() Reservation {
	return Reservation{phase: PhaseAvailable}
}

// Frozen marks a competing bid suspended while holdID is active.
func Frozen(holdID string) Reservation {
	return Reservation{phase: PhaseFrozen, holdID: holdID}
}

// Held marks the bid the hold requester is reserving.
func Held(holdID string) Reservation {
	return Reservation{phase: PhaseHeld, holdID: holdID}
}

// AcceptedHeld marks a held bid the requester has provisionally chosen.
func AcceptedHeld(holdID string) Reservation {
	return Reservation{phase: PhaseAcceptedHeld, holdID: holdID}
}

// NewReservation rebuilds a Reservation from stored columns, rejecting
// combinations the constructors cannot produce.
func NewReservation(phase ReservationPhase, holdID string) (Reservation, error) {
	switch phase {
	case PhaseAvailable, "":
		if holdID != "" {
			return Reservation{}, fmt.Errorf("available reservation carries hold id %s", holdID)
		}
		return Available(), nil
	case PhaseFrozen, PhaseHeld, PhaseAcceptedHeld:
		if holdID == "" {
			return Reservation{}, fmt.Errorf("%s reservation missing hold id", phase)
		}
		return Reservation{phase: phase, holdID: holdID}, nil
	default:
		return Reservation{}, fmt.Errorf("unknown reservation phase %q", phase)
	}
}

func (r Reservation) Phase() ReservationPhase {
	if r.phase == "" {
		return PhaseAvailable
	}
	return r.phase
}

// HoldID returns the owning hold id, empty when available.
func (r Reservation) HoldID() string {
	return r.holdID
}

func (r Reservation) IsAvailable() bool {
	return r.Phase() == PhaseAvailable
}

// HeldBy reports whether the reservation is owned by holdID.
func (r Reservation) HeldBy(holdID string) bool {
	return r.holdID != "" && r.holdID == holdID
}
