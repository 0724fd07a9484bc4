package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/encorehq/stagehold/internal/clock"
	"github.com/encorehq/stagehold/internal/domain"
)

// HoldLedger is the persistence contract for hold records. WithTx runs fn
// inside one transaction; every other method joins the transaction carried
// in ctx when one is present.
type HoldLedger interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetBookingRequest(ctx context.Context, id string) (domain.BookingRequest, error)
	CreateHold(ctx context.Context, hold domain.Hold) error
	GetHoldForUpdate(ctx context.Context, holdID string) (domain.Hold, error)
	// ActivateHold flips a pending hold to active only if no sibling hold on
	// the same booking request is active. The check and the write are one
	// conditional statement in the store; domain.ErrHoldConflict reports a
	// losing race.
	ActivateHold(ctx context.Context, holdID, bookingRequestID, responderID string, startsAt, expiresAt time.Time) error
	ResolveHold(ctx context.Context, holdID string, status domain.HoldStatus, respondedAt time.Time) error
	FindActiveHold(ctx context.Context, bookingRequestID string) (*domain.Hold, error)
}

// BidLedger is the persistence contract for bid records. Reservation writes
// go through here and nowhere else.
type BidLedger interface {
	GetBidForUpdate(ctx context.Context, bidID string) (domain.Bid, error)
	ListCompetingBids(ctx context.Context, bookingRequestID string) ([]domain.Bid, error)
	SetReservation(ctx context.Context, bidID string, res domain.Reservation) error
	SetBidStatus(ctx context.Context, bidID string, status domain.BidStatus) error
	FreezeBids(ctx context.Context, bidIDs []string, holdID string) error
	ReleaseBidsHeldBy(ctx context.Context, holdID string) ([]string, error)
	RejectFrozenHeldBy(ctx context.Context, holdID string) ([]string, error)
	CountReservations(ctx context.Context, bookingRequestID string) (frozen, held int, err error)
}

// Notifier receives domain events after the transition that produced them
// has committed. Delivery is best effort and never rolls back state.
type Notifier interface {
	Publish(ctx context.Context, ev domain.Event)
}

// HoldService is the sole writer of hold status and bid reservation phase.
type HoldService struct {
	holds    HoldLedger
	bids     BidLedger
	notifier Notifier
	clock    clock.Clock
	holdTTL  time.Duration
}

const defaultHoldTTL = 48 * time.Hour

func NewHoldService(holds HoldLedger, bids BidLedger, notifier Notifier, clk clock.Clock, opts ...HoldServiceOption) *HoldService {
	svc := &HoldService{
		holds:    holds,
		bids:     bids,
		notifier: notifier,
		clock:    clk,
		holdTTL:  defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type HoldServiceOption func(*HoldService)

// WithHoldTTL overrides the default duration applied to holds requested
// without an explicit one.
func WithHoldTTL(d time.Duration) HoldServiceOption {
	return func(s *HoldService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

type RequestHoldInput struct {
	BookingRequestID string
	BidID            string
	ActorID          string
	Duration         time.Duration
}

// RequestHold creates a pending hold on the actor's own bid. Nothing is
// frozen until the artist grants it.
func (s *HoldService) RequestHold(ctx context.Context, in RequestHoldInput) (domain.Hold, error) {
	if in.Duration < 0 {
		return domain.Hold{}, domain.ErrInvalidDuration
	}
	duration := in.Duration
	if duration == 0 {
		duration = s.holdTTL
	}

	now := s.clock.Now()
	var hold domain.Hold

	err := s.holds.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.holds.GetBookingRequest(txCtx, in.BookingRequestID); err != nil {
			return err
		}

		bid, err := s.bids.GetBidForUpdate(txCtx, in.BidID)
		if err != nil {
			return err
		}
		if bid.BookingRequestID != in.BookingRequestID {
			return domain.ErrBidNotFound
		}
		if bid.VenueID != in.ActorID {
			return domain.ErrUnauthorized
		}
		if bid.Status != domain.BidStatusPending || !bid.Reservation.IsAvailable() {
			return domain.ErrBidUnavailable
		}

		hold = domain.Hold{
			ID:               uuid.NewString(),
			BookingRequestID: in.BookingRequestID,
			BidID:            in.BidID,
			RequesterID:      in.ActorID,
			Status:           domain.HoldStatusPending,
			RequestedAt:      now,
			Duration:         duration,
		}
		return s.holds.CreateHold(txCtx, hold)
	})
	if err != nil {
		return domain.Hold{}, err
	}

	s.notifier.Publish(ctx, domain.HoldRequested{
		HoldID:           hold.ID,
		BookingRequestID: hold.BookingRequestID,
		BidID:            hold.BidID,
	})
	return hold, nil
}

type GrantResult struct {
	Hold         domain.Hold
	HeldBidID    string
	FrozenBidIDs []string
}

// Grant activates a pending hold: the requester's bid becomes held, every
// other non-terminal bid on the booking request becomes frozen, all in one
// transaction. Exactly one grant can win per booking request; losers get
// domain.ErrHoldConflict and no writes.
func (s *HoldService) Grant(ctx context.Context, holdID, actorID string) (GrantResult, error) {
	now := s.clock.Now()
	var result GrantResult

	err := s.holds.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.holds.GetHoldForUpdate(txCtx, holdID)
		if err != nil {
			return err
		}
		if hold.Status != domain.HoldStatusPending {
			return domain.ErrInvalidHoldState
		}

		request, err := s.holds.GetBookingRequest(txCtx, hold.BookingRequestID)
		if err != nil {
			return err
		}
		if request.ArtistID != actorID {
			return domain.ErrUnauthorized
		}

		// The bid may have been settled since the hold was requested: a
		// confirm on a competing hold rejects it, a release leaves it
		// available again. Re-check under the row lock before activating.
		target, err := s.bids.GetBidForUpdate(txCtx, hold.BidID)
		if err != nil {
			return err
		}
		if target.Status != domain.BidStatusPending || !target.Reservation.IsAvailable() {
			return domain.ErrBidUnavailable
		}

		startsAt := now
		expiresAt := now.Add(hold.Duration)
		if err := s.holds.ActivateHold(txCtx, hold.ID, hold.BookingRequestID, actorID, startsAt, expiresAt); err != nil {
			return err
		}

		if err := s.bids.SetReservation(txCtx, hold.BidID, domain.Held(hold.ID)); err != nil {
			return err
		}

		competitors, err := s.bids.ListCompetingBids(txCtx, hold.BookingRequestID)
		if err != nil {
			return err
		}
		var toFreeze []string
		for _, bid := range competitors {
			if bid.ID == hold.BidID || !bid.Reservation.IsAvailable() {
				continue
			}
			toFreeze = append(toFreeze, bid.ID)
		}
		if err := s.bids.FreezeBids(txCtx, toFreeze, hold.ID); err != nil {
			return err
		}

		hold.Status = domain.HoldStatusActive
		hold.ResponderID = &actorID
		hold.StartsAt = &startsAt
		hold.ExpiresAt = &expiresAt
		result = GrantResult{Hold: hold, HeldBidID: hold.BidID, FrozenBidIDs: toFreeze}
		return nil
	})
	if err != nil {
		return GrantResult{}, err
	}

	s.notifier.Publish(ctx, domain.HoldGranted{
		HoldID:       result.Hold.ID,
		HeldBidID:    result.HeldBidID,
		FrozenBidIDs: result.FrozenBidIDs,
	})
	return result, nil
}

// AcceptProvisionally moves the held bid to accepted_held without touching
// frozen competitors, so the requester can still change their mind before
// anyone is told they lost. Repeating the call is a no-op success.
func (s *HoldService) AcceptProvisionally(ctx context.Context, holdID string) (domain.Bid, error) {
	var (
		bid     domain.Bid
		changed bool
	)

	err := s.holds.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.holds.GetHoldForUpdate(txCtx, holdID)
		if err != nil {
			return err
		}
		if hold.Status != domain.HoldStatusActive {
			return domain.ErrInvalidHoldState
		}

		bid, err = s.bids.GetBidForUpdate(txCtx, hold.BidID)
		if err != nil {
			return err
		}
		switch bid.Reservation.Phase() {
		case domain.PhaseAcceptedHeld:
			return nil
		case domain.PhaseHeld:
		default:
			return domain.ErrInvalidHoldState
		}

		res := domain.AcceptedHeld(hold.ID)
		if err := s.bids.SetReservation(txCtx, bid.ID, res); err != nil {
			return err
		}
		bid.Reservation = res
		changed = true
		return nil
	})
	if err != nil {
		return domain.Bid{}, err
	}

	if changed {
		s.notifier.Publish(ctx, domain.HoldProvisionallyAccepted{HoldID: holdID, BidID: bid.ID})
	}
	return bid, nil
}

type ConfirmResult struct {
	WinningBidID   string
	RejectedBidIDs []string
}

// Confirm is the point of no return: the provisionally accepted bid becomes
// accepted, every bid still frozen under the hold becomes rejected, and the
// hold episode closes.
func (s *HoldService) Confirm(ctx context.Context, holdID string) (ConfirmResult, error) {
	now := s.clock.Now()
	var result ConfirmResult

	err := s.holds.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.holds.GetHoldForUpdate(txCtx, holdID)
		if err != nil {
			return err
		}
		if hold.Status != domain.HoldStatusActive {
			return domain.ErrInvalidHoldState
		}

		bid, err := s.bids.GetBidForUpdate(txCtx, hold.BidID)
		if err != nil {
			return err
		}
		if bid.Reservation.Phase() != domain.PhaseAcceptedHeld {
			return domain.ErrInvalidHoldState
		}

		if err := s.bids.SetBidStatus(txCtx, bid.ID, domain.BidStatusAccepted); err != nil {
			return err
		}
		if err := s.bids.SetReservation(txCtx, bid.ID, domain.Available()); err != nil {
			return err
		}

		rejected, err := s.bids.RejectFrozenHeldBy(txCtx, hold.ID)
		if err != nil {
			return err
		}

		// Cancelled here means resolved by confirmation; the hold never
		// comes back either way.
		if err := s.holds.ResolveHold(txCtx, hold.ID, domain.HoldStatusCancelled, now); err != nil {
			return err
		}

		result = ConfirmResult{WinningBidID: bid.ID, RejectedBidIDs: rejected}
		return nil
	})
	if err != nil {
		return ConfirmResult{}, err
	}

	s.notifier.Publish(ctx, domain.HoldConfirmed{
		HoldID:         holdID,
		WinningBidID:   result.WinningBidID,
		RejectedBidIDs: result.RejectedBidIDs,
	})
	return result, nil
}

type ReleaseResult struct {
	ReopenedBidIDs []string
	Released       bool
}

// Release ends a hold without confirmation and returns every bid it was
// holding or freezing to available. Releasing an already-terminal hold is a
// no-op success, which absorbs the sweeper racing a manual decline.
func (s *HoldService) Release(ctx context.Context, holdID string, reason domain.ReleaseReason) (ReleaseResult, error) {
	if !reason.Valid() {
		return ReleaseResult{}, domain.ErrInvalidReleaseReason
	}

	now := s.clock.Now()
	var result ReleaseResult

	err := s.holds.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.holds.GetHoldForUpdate(txCtx, holdID)
		if err != nil {
			return err
		}
		if hold.Status.Terminal() {
			return nil
		}
		// Only the sweeper produces expired, and it only targets active holds.
		if hold.Status == domain.HoldStatusPending && reason == domain.ReleaseExpired {
			return domain.ErrInvalidHoldState
		}

		if err := s.holds.ResolveHold(txCtx, hold.ID, reason.HoldStatus(), now); err != nil {
			return err
		}
		reopened, err := s.bids.ReleaseBidsHeldBy(txCtx, hold.ID)
		if err != nil {
			return err
		}

		result = ReleaseResult{ReopenedBidIDs: reopened, Released: true}
		return nil
	})
	if err != nil {
		return ReleaseResult{}, err
	}

	if result.Released {
		s.notifier.Publish(ctx, domain.HoldReleased{
			HoldID:         holdID,
			Reason:         reason,
			ReopenedBidIDs: result.ReopenedBidIDs,
		})
	}
	return result, nil
}

type HoldState struct {
	ActiveHold *domain.Hold
	FrozenBids int
	HeldBids   int
}

// QueryState reports whether a booking request currently has an active hold
// and how many bids it is freezing or holding.
func (s *HoldService) QueryState(ctx context.Context, bookingRequestID string) (HoldState, error) {
	if _, err := s.holds.GetBookingRequest(ctx, bookingRequestID); err != nil {
		return HoldState{}, err
	}

	active, err := s.holds.FindActiveHold(ctx, bookingRequestID)
	if err != nil {
		return HoldState{}, err
	}
	frozen, held, err := s.bids.CountReservations(ctx, bookingRequestID)
	if err != nil {
		return HoldState{}, err
	}
	return HoldState{ActiveHold: active, FrozenBids: frozen, HeldBids: held}, nil
}
