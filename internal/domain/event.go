package domain

// Event is a domain event emitted after a hold transition commits. Payloads
// carry ids only; consumers look up display data themselves.
type Event interface {
	EventName() string
}

type HoldRequested struct {
	HoldID           string
	BookingRequestID string
	BidID            string
}

func (HoldRequested) EventName() string { return "hold.requested" }

type HoldGranted struct {
	HoldID       string
	HeldBidID    string
	FrozenBidIDs []string
}

func (HoldGranted) EventName() string { return "hold.granted" }

type HoldProvisionallyAccepted struct {
	HoldID string
	BidID  string
}

func (HoldProvisionallyAccepted) EventName() string { return "hold.provisionally_accepted" }

type HoldConfirmed struct {
	HoldID         string
	WinningBidID   string
	RejectedBidIDs []string
}

func (HoldConfirmed) EventName() string { return "hold.confirmed" }

type HoldReleased struct {
	HoldID         string
	Reason         ReleaseReason
	ReopenedBidIDs []string
}

func (HoldReleased) EventName() string { return "hold.released" }
