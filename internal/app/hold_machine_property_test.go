package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/encorehq/stagehold/internal/clock"
	"github.com/encorehq/stagehold/internal/domain"
)

// Random walks over the state machine must never break the structural
// invariants: at most one active hold per booking request, at most one
// held bid, and no bid reserved by anything but the active hold.
func TestProperty_HoldMachineInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numBids := rapid.IntRange(2, 6).Draw(t, "numBids")
		numSteps := rapid.IntRange(5, 40).Draw(t, "numSteps")

		world := newFakeWorld()
		world.addRequest("req-1", "artist-1")

		bidIDs := make([]string, numBids)
		for i := range bidIDs {
			bidIDs[i] = fmt.Sprintf("bid-%d", i)
			world.addBid(bidIDs[i], "req-1", fmt.Sprintf("venue-%d", i))
		}

		clk := clock.NewFixed(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
		holds := &fakeHoldLedger{w: world}
		svc := NewHoldService(holds, &fakeBidLedger{w: world}, &fakeNotifier{}, clk, WithHoldTTL(time.Hour))
		sweeper := NewExpirySweeper(holds, svc, time.Minute, clk, nil)

		var holdIDs []string
		ctx := context.Background()

		for step := 0; step < numSteps; step++ {
			action := rapid.IntRange(0, 5).Draw(t, fmt.Sprintf("action-%d", step))

			var err error
			switch action {
			case 0:
				bidID := rapid.SampledFrom(bidIDs).Draw(t, fmt.Sprintf("bid-%d", step))
				venueID := world.bid(bidID).VenueID
				var hold domain.Hold
				hold, err = svc.RequestHold(ctx, RequestHoldInput{
					BookingRequestID: "req-1",
					BidID:            bidID,
					ActorID:          venueID,
				})
				if err == nil {
					holdIDs = append(holdIDs, hold.ID)
				}
			case 1:
				if len(holdIDs) > 0 {
					id := rapid.SampledFrom(holdIDs).Draw(t, fmt.Sprintf("grant-%d", step))
					_, err = svc.Grant(ctx, id, "artist-1")
				}
			case 2:
				if len(holdIDs) > 0 {
					id := rapid.SampledFrom(holdIDs).Draw(t, fmt.Sprintf("accept-%d", step))
					_, err = svc.AcceptProvisionally(ctx, id)
				}
			case 3:
				if len(holdIDs) > 0 {
					id := rapid.SampledFrom(holdIDs).Draw(t, fmt.Sprintf("confirm-%d", step))
					_, err = svc.Confirm(ctx, id)
				}
			case 4:
				if len(holdIDs) > 0 {
					id := rapid.SampledFrom(holdIDs).Draw(t, fmt.Sprintf("release-%d", step))
					reason := rapid.SampledFrom([]domain.ReleaseReason{
						domain.ReleaseDeclined,
						domain.ReleaseCancelled,
					}).Draw(t, fmt.Sprintf("reason-%d", step))
					_, err = svc.Release(ctx, id, reason)
				}
			case 5:
				clk.Advance(time.Duration(rapid.Int64Range(int64(time.Minute), int64(2*time.Hour)).Draw(t, fmt.Sprintf("advance-%d", step))))
				_, err = sweeper.Sweep(ctx)
			}

			switch err {
			case nil, domain.ErrInvalidHoldState, domain.ErrHoldConflict,
				domain.ErrBidUnavailable, domain.ErrUnauthorized:
			default:
				t.Fatalf("step %d action %d: unexpected error %v", step, action, err)
			}

			checkInvariants(t, world)
		}
	})
}

func checkInvariants(t *rapid.T, world *fakeWorld) {
	t.Helper()

	world.mu.Lock()
	defer world.mu.Unlock()

	active := map[string]string{} // booking request -> active hold id
	for _, h := range world.holds {
		if h.Status != domain.HoldStatusActive {
			continue
		}
		if prev, ok := active[h.BookingRequestID]; ok {
			t.Fatalf("two active holds on %s: %s and %s", h.BookingRequestID, prev, h.ID)
		}
		active[h.BookingRequestID] = h.ID
		if h.StartsAt == nil || h.ExpiresAt == nil {
			t.Fatalf("active hold %s missing window", h.ID)
		}
	}

	heldCount := map[string]int{} // hold id -> held/accepted_held bids
	for _, b := range world.bids {
		res := b.Reservation
		if res.IsAvailable() {
			continue
		}
		owner := world.holds[res.HoldID()]
		if owner == nil {
			t.Fatalf("bid %s reserved by unknown hold %s", b.ID, res.HoldID())
		}
		if owner.Status != domain.HoldStatusActive {
			t.Fatalf("bid %s reserved (%s) by non-active hold %s (%s)",
				b.ID, res.Phase(), owner.ID, owner.Status)
		}
		if b.Status.Terminal() {
			t.Fatalf("terminal bid %s still reserved (%s)", b.ID, res.Phase())
		}
		if res.Phase() == domain.PhaseHeld || res.Phase() == domain.PhaseAcceptedHeld {
			heldCount[res.HoldID()]++
			if b.ID != owner.BidID {
				t.Fatalf("bid %s held by hold %s that targets %s", b.ID, owner.ID, owner.BidID)
			}
		}
	}
	for holdID, n := range heldCount {
		if n > 1 {
			t.Fatalf("hold %s holds %d bids", holdID, n)
		}
	}
}
