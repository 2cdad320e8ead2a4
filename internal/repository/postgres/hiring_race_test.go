package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/Windi-Fikriyansyah/gigflow/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigflow/internal/models"
	"github.com/Windi-Fikriyansyah/gigflow/internal/services/hiring"
	"github.com/Windi-Fikriyansyah/gigflow/internal/services/marketplace"
	"github.com/google/uuid"
)

func TestConcurrentHiresOnPostgres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	gig, bids := seedGigWithBids(t, s, 8)
	coord := hiring.NewCoordinator(s, nil)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []uuid.UUID
		conflicts int
		others    []error
	)
	start := make(chan struct{})
	for _, b := range bids {
		wg.Add(1)
		go func(bid models.Bid) {
			defer wg.Done()
			<-start
			_, err := coord.Hire(ctx, bid.ID, gig.OwnerID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, bid.FreelancerID)
			case apperr.Is(err, apperr.KindConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}(b)
	}
	close(start)
	wg.Wait()

	if len(others) != 0 {
		t.Fatalf("unexpected errors: %v", others)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one successful hire, got %d", len(winners))
	}
	if conflicts != len(bids)-1 {
		t.Fatalf("expected %d conflicts, got %d", len(bids)-1, conflicts)
	}

	got, err := s.FindGig(ctx, gig.ID)
	if err != nil {
		t.Fatalf("find gig: %v", err)
	}
	if got.Status != models.GigStatusAssigned || got.AssignedTo == nil || *got.AssignedTo != winners[0] {
		t.Fatalf("gig not assigned to the winner: %+v", got)
	}
	all, err := s.ListBidsByGig(ctx, gig.ID)
	if err != nil {
		t.Fatalf("list bids: %v", err)
	}
	hired := 0
	for _, b := range all {
		switch b.Status {
		case models.BidStatusHired:
			hired++
			if b.FreelancerID != winners[0] {
				t.Fatalf("hired bid %s does not belong to the assignee", b.ID)
			}
		case models.BidStatusPending:
			t.Fatalf("bid %s left pending on assigned gig", b.ID)
		}
	}
	if hired != 1 {
		t.Fatalf("expected one hired bid, got %d", hired)
	}
}

func TestHireRacingPlaceBidOnPostgres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	gig, bids := seedGigWithBids(t, s, 1)
	coord := hiring.NewCoordinator(s, nil)
	svc := marketplace.NewService(s)

	var wg sync.WaitGroup
	start := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		if _, err := coord.Hire(ctx, bids[0].ID, gig.OwnerID); err != nil {
			t.Errorf("hire: %v", err)
		}
	}()
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.PlaceBid(ctx, uuid.New(), marketplace.PlaceBidInput{GigID: gig.ID, Message: "late", BidAmount: 50})
			if err != nil && !apperr.Is(err, apperr.KindConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	all, err := s.ListBidsByGig(ctx, gig.ID)
	if err != nil {
		t.Fatalf("list bids: %v", err)
	}
	for _, b := range all {
		if b.Status == models.BidStatusPending {
			t.Fatalf("bid %s left pending on assigned gig", b.ID)
		}
	}
}
