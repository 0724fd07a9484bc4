package app

import (
	"context"
	"sync"
	"time"

	"github.com/encorehq/stagehold/internal/domain"
)

// fakeWorld backs the fake ledgers with one shared in-memory data set.
// WithTx serializes transactions on txMu the way the database serializes
// conflicting row locks, so racing grants resolve the same way they do
// against Postgres.
type fakeWorld struct {
	txMu sync.Mutex
	mu   sync.Mutex

	requests map[string]domain.BookingRequest
	holds    map[string]*domain.Hold
	bids     []*domain.Bid
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		requests: make(map[string]domain.BookingRequest),
		holds:    make(map[string]*domain.Hold),
	}
}

func (w *fakeWorld) addRequest(id, artistID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.requests[id] = domain.BookingRequest{ID: id, ArtistID: artistID, Title: "show"}
}

func (w *fakeWorld) addBid(id, requestID, venueID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bids = append(w.bids, &domain.Bid{
		ID:               id,
		BookingRequestID: requestID,
		VenueID:          venueID,
		Status:           domain.BidStatusPending,
		Reservation:      domain.Available(),
	})
}

func (w *fakeWorld) bid(id string) *domain.Bid {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, b := range w.bids {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (w *fakeWorld) hold(id string) *domain.Hold {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.holds[id]
}

type fakeHoldLedger struct {
	w *fakeWorld
}

func (f *fakeHoldLedger) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.w.txMu.Lock()
	defer f.w.txMu.Unlock()
	return fn(ctx)
}

func (f *fakeHoldLedger) GetBookingRequest(_ context.Context, id string) (domain.BookingRequest, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	br, ok := f.w.requests[id]
	if !ok {
		return domain.BookingRequest{}, domain.ErrBookingRequestNotFound
	}
	return br, nil
}

func (f *fakeHoldLedger) CreateHold(_ context.Context, hold domain.Hold) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	h := hold
	f.w.holds[hold.ID] = &h
	return nil
}

func (f *fakeHoldLedger) GetHoldForUpdate(_ context.Context, holdID string) (domain.Hold, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	h, ok := f.w.holds[holdID]
	if !ok {
		return domain.Hold{}, domain.ErrHoldNotFound
	}
	return *h, nil
}

func (f *fakeHoldLedger) ActivateHold(_ context.Context, holdID, bookingRequestID, responderID string, startsAt, expiresAt time.Time) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	h, ok := f.w.holds[holdID]
	if !ok {
		return domain.ErrHoldNotFound
	}
	for _, sibling := range f.w.holds {
		if sibling.BookingRequestID == bookingRequestID && sibling.Status == domain.HoldStatusActive {
			return domain.ErrHoldConflict
		}
	}
	if h.Status != domain.HoldStatusPending {
		return domain.ErrHoldConflict
	}
	h.Status = domain.HoldStatusActive
	h.ResponderID = &responderID
	h.StartsAt = &startsAt
	h.ExpiresAt = &expiresAt
	return nil
}

func (f *fakeHoldLedger) ResolveHold(_ context.Context, holdID string, status domain.HoldStatus, respondedAt time.Time) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	h, ok := f.w.holds[holdID]
	if !ok {
		return domain.ErrHoldNotFound
	}
	h.Status = status
	h.RespondedAt = &respondedAt
	return nil
}

func (f *fakeHoldLedger) FindActiveHold(_ context.Context, bookingRequestID string) (*domain.Hold, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for _, h := range f.w.holds {
		if h.BookingRequestID == bookingRequestID && h.Status == domain.HoldStatusActive {
			copied := *h
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeHoldLedger) ListExpiredHoldIDs(_ context.Context, now time.Time) ([]string, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var ids []string
	for _, h := range f.w.holds {
		if h.Status == domain.HoldStatusActive && h.ExpiresAt != nil && !h.ExpiresAt.After(now) {
			ids = append(ids, h.ID)
		}
	}
	return ids, nil
}

type fakeBidLedger struct {
	w *fakeWorld
}

func (f *fakeBidLedger) GetBidForUpdate(_ context.Context, bidID string) (domain.Bid, error) {
	b := f.w.bid(bidID)
	if b == nil {
		return domain.Bid{}, domain.ErrBidNotFound
	}
	return *b, nil
}

func (f *fakeBidLedger) ListCompetingBids(_ context.Context, bookingRequestID string) ([]domain.Bid, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []domain.Bid
	for _, b := range f.w.bids {
		if b.BookingRequestID == bookingRequestID && !b.Status.Terminal() {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBidLedger) SetReservation(_ context.Context, bidID string, res domain.Reservation) error {
	b := f.w.bid(bidID)
	if b == nil {
		return domain.ErrBidNotFound
	}
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	b.Reservation = res
	return nil
}

func (f *fakeBidLedger) SetBidStatus(_ context.Context, bidID string, status domain.BidStatus) error {
	b := f.w.bid(bidID)
	if b == nil {
		return domain.ErrBidNotFound
	}
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	b.Status = status
	return nil
}

func (f *fakeBidLedger) FreezeBids(_ context.Context, bidIDs []string, holdID string) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for _, id := range bidIDs {
		for _, b := range f.w.bids {
			if b.ID == id {
				b.Reservation = domain.Frozen(holdID)
			}
		}
	}
	return nil
}

func (f *fakeBidLedger) ReleaseBidsHeldBy(_ context.Context, holdID string) ([]string, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var ids []string
	for _, b := range f.w.bids {
		if b.Reservation.HeldBy(holdID) {
			b.Reservation = domain.Available()
			ids = append(ids, b.ID)
		}
	}
	return ids, nil
}

func (f *fakeBidLedger) RejectFrozenHeldBy(_ context.Context, holdID string) ([]string, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var ids []string
	for _, b := range f.w.bids {
		if b.Reservation.HeldBy(holdID) && b.Reservation.Phase() == domain.PhaseFrozen {
			b.Status = domain.BidStatusRejected
			b.Reservation = domain.Available()
			ids = append(ids, b.ID)
		}
	}
	return ids, nil
}

func (f *fakeBidLedger) CountReservations(_ context.Context, bookingRequestID string) (frozen, held int, err error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for _, b := range f.w.bids {
		if b.BookingRequestID != bookingRequestID {
			continue
		}
		switch b.Reservation.Phase() {
		case domain.PhaseFrozen:
			frozen++
		case domain.PhaseHeld, domain.PhaseAcceptedHeld:
			held++
		}
	}
	return frozen, held, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (n *fakeNotifier) Publish(_ context.Context, ev domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *fakeNotifier) names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.EventName())
	}
	return out
}
