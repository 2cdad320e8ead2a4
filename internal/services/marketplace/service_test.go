package marketplace

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Windi-Fikriyansyah/gigflow/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigflow/internal/models"
	"github.com/Windi-Fikriyansyah/gigflow/internal/repository"
	"github.com/Windi-Fikriyansyah/gigflow/internal/repository/memory"
	"github.com/Windi-Fikriyansyah/gigflow/internal/services/hiring"
	"github.com/google/uuid"
)

func expectKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if !apperr.Is(err, kind) {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
}

func newGig(t *testing.T, svc *Service, owner uuid.UUID, in CreateGigInput) *models.Gig {
	t.Helper()
	gig, err := svc.CreateGig(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("create gig: %v", err)
	}
	return gig
}

func TestCreateGigDefaults(t *testing.T) {
	svc := NewService(memory.New())
	owner := uuid.New()

	gig := newGig(t, svc, owner, CreateGigInput{
		Title:       "  Landing page  ",
		Description: "one pager",
		Budget:      800,
		Skills:      []string{"html", " ", "css "},
	})
	if gig.Title != "Landing page" {
		t.Fatalf("title not trimmed: %q", gig.Title)
	}
	if gig.Category != models.DefaultCategory {
		t.Fatalf("category = %q, want %q", gig.Category, models.DefaultCategory)
	}
	if gig.Status != models.GigStatusOpen || gig.AssignedTo != nil {
		t.Fatalf("new gig should be open and unassigned: %+v", gig)
	}
	if len(gig.Skills) != 2 || gig.Skills[1] != "css" {
		t.Fatalf("skills = %v", gig.Skills)
	}
	if gig.OwnerID != owner {
		t.Fatalf("owner = %s, want %s", gig.OwnerID, owner)
	}
}

func TestCreateGigValidation(t *testing.T) {
	svc := NewService(memory.New())
	cases := map[string]CreateGigInput{
		"no title":       {Description: "d", Budget: 10},
		"no description": {Title: "t", Budget: 10},
		"zero budget":    {Title: "t", Description: "d"},
		"negative":       {Title: "t", Description: "d", Budget: -5},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateGig(context.Background(), uuid.New(), in)
			expectKind(t, err, apperr.KindInvalid)
		})
	}
}

func TestGetGigNotFound(t *testing.T) {
	svc := NewService(memory.New())
	_, err := svc.GetGig(context.Background(), uuid.New())
	expectKind(t, err, apperr.KindNotFound)
}

func TestListOpenGigsFilters(t *testing.T) {
	store := memory.New()
	svc := NewService(store)
	owner := uuid.New()
	ctx := context.Background()

	newGig(t, svc, owner, CreateGigInput{Title: "Logo design", Description: "vector logo", Budget: 400, Category: "Design"})
	newGig(t, svc, owner, CreateGigInput{Title: "Go backend", Description: "REST API", Budget: 4000, Category: "Development"})
	big := newGig(t, svc, owner, CreateGigInput{Title: "Mobile app", Description: "flutter", Budget: 9000, Category: "Development"})

	// close one gig so it drops off the board
	bid, err := svc.PlaceBid(ctx, uuid.New(), PlaceBidInput{GigID: big.ID, Message: "hi", BidAmount: 8000})
	if err != nil {
		t.Fatalf("place bid: %v", err)
	}
	if _, err := hiring.NewCoordinator(store, nil).Hire(ctx, bid.ID, owner); err != nil {
		t.Fatalf("hire: %v", err)
	}

	tests := []struct {
		name string
		in   ListGigsInput
		want int
	}{
		{"all open", ListGigsInput{}, 2},
		{"category all", ListGigsInput{Category: "all", Budget: "all"}, 2},
		{"category", ListGigsInput{Category: "Development"}, 1},
		{"search title", ListGigsInput{Search: "LOGO"}, 1},
		{"search description", ListGigsInput{Search: "rest"}, 1},
		{"budget 500", ListGigsInput{Budget: "500"}, 1},
		{"budget 5000", ListGigsInput{Budget: "5000"}, 2},
		{"unknown bracket", ListGigsInput{Budget: "42"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gigs, err := svc.ListOpenGigs(ctx, tt.in)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(gigs) != tt.want {
				t.Fatalf("got %d gigs, want %d", len(gigs), tt.want)
			}
			for _, g := range gigs {
				if g.Status != models.GigStatusOpen {
					t.Fatalf("assigned gig %s on the board", g.ID)
				}
			}
		})
	}

	mine, err := svc.ListMyGigs(ctx, owner)
	if err != nil {
		t.Fatalf("my gigs: %v", err)
	}
	if len(mine) != 3 {
		t.Fatalf("owner should see all 3 gigs, got %d", len(mine))
	}

	cats, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != 2 || cats[0] != "Design" || cats[1] != "Development" {
		t.Fatalf("categories = %v", cats)
	}
}

func TestUpdateGig(t *testing.T) {
	svc := NewService(memory.New())
	owner := uuid.New()
	ctx := context.Background()
	gig := newGig(t, svc, owner, CreateGigInput{Title: "Old", Description: "d", Budget: 100})

	title := "New title"
	budget := int64(250)
	updated, err := svc.UpdateGig(ctx, gig.ID, owner, UpdateGigInput{Title: &title, Budget: &budget, Skills: []string{"go"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title || updated.Budget != budget || updated.Description != "d" {
		t.Fatalf("unexpected gig after update: %+v", updated)
	}
	if len(updated.Skills) != 1 || updated.Skills[0] != "go" {
		t.Fatalf("skills = %v", updated.Skills)
	}

	_, err = svc.UpdateGig(ctx, gig.ID, uuid.New(), UpdateGigInput{Title: &title})
	expectKind(t, err, apperr.KindForbidden)

	empty := "  "
	_, err = svc.UpdateGig(ctx, gig.ID, owner, UpdateGigInput{Title: &empty})
	expectKind(t, err, apperr.KindInvalid)

	_, err = svc.UpdateGig(ctx, uuid.New(), owner, UpdateGigInput{Title: &title})
	expectKind(t, err, apperr.KindNotFound)
}

func TestUpdateAssignedGigConflicts(t *testing.T) {
	store := memory.New()
	svc := NewService(store)
	owner := uuid.New()
	ctx := context.Background()
	gig := newGig(t, svc, owner, CreateGigInput{Title: "t", Description: "d", Budget: 100})
	bid, err := svc.PlaceBid(ctx, uuid.New(), PlaceBidInput{GigID: gig.ID, Message: "m", BidAmount: 90})
	if err != nil {
		t.Fatalf("place bid: %v", err)
	}
	if _, err := hiring.NewCoordinator(store, nil).Hire(ctx, bid.ID, owner); err != nil {
		t.Fatalf("hire: %v", err)
	}

	title := "changed"
	_, err = svc.UpdateGig(ctx, gig.ID, owner, UpdateGigInput{Title: &title})
	expectKind(t, err, apperr.KindConflict)
}

func TestDeleteGig(t *testing.T) {
	svc := NewService(memory.New())
	owner := uuid.New()
	ctx := context.Background()

	empty := newGig(t, svc, owner, CreateGigInput{Title: "t", Description: "d", Budget: 100})
	expectKind(t, svc.DeleteGig(ctx, empty.ID, uuid.New()), apperr.KindForbidden)
	if err := svc.DeleteGig(ctx, empty.ID, owner); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := svc.GetGig(ctx, empty.ID)
	expectKind(t, err, apperr.KindNotFound)
	expectKind(t, svc.DeleteGig(ctx, empty.ID, owner), apperr.KindNotFound)

	withBid := newGig(t, svc, owner, CreateGigInput{Title: "t", Description: "d", Budget: 100})
	if _, err := svc.PlaceBid(ctx, uuid.New(), PlaceBidInput{GigID: withBid.ID, Message: "m", BidAmount: 50}); err != nil {
		t.Fatalf("place bid: %v", err)
	}
	expectKind(t, svc.DeleteGig(ctx, withBid.ID, owner), apperr.KindConflict)
}

func TestPlaceBid(t *testing.T) {
	svc := NewService(memory.New())
	owner := uuid.New()
	freelancer := uuid.New()
	ctx := context.Background()
	gig := newGig(t, svc, owner, CreateGigInput{Title: "t", Description: "d", Budget: 100})

	bid, err := svc.PlaceBid(ctx, freelancer, PlaceBidInput{GigID: gig.ID, Message: " I can help ", BidAmount: 80})
	if err != nil {
		t.Fatalf("place bid: %v", err)
	}
	if bid.Status != models.BidStatusPending || bid.Message != "I can help" || bid.FreelancerID != freelancer {
		t.Fatalf("unexpected bid: %+v", bid)
	}

	_, err = svc.PlaceBid(ctx, freelancer, PlaceBidInput{GigID: gig.ID, Message: "again", BidAmount: 70})
	expectKind(t, err, apperr.KindConflict)

	_, err = svc.PlaceBid(ctx, freelancer, PlaceBidInput{GigID: uuid.New(), Message: "m", BidAmount: 70})
	expectKind(t, err, apperr.KindNotFound)

	_, err = svc.PlaceBid(ctx, freelancer, PlaceBidInput{GigID: gig.ID, Message: "", BidAmount: 70})
	expectKind(t, err, apperr.KindInvalid)

	_, err = svc.PlaceBid(ctx, freelancer, PlaceBidInput{GigID: gig.ID, Message: "m", BidAmount: 0})
	expectKind(t, err, apperr.KindInvalid)

	mine, err := svc.MyBids(ctx, freelancer)
	if err != nil {
		t.Fatalf("my bids: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != bid.ID {
		t.Fatalf("my bids = %+v", mine)
	}
}

func TestPlaceBidOnAssignedGigConflicts(t *testing.T) {
	store := memory.New()
	svc := NewService(store)
	owner := uuid.New()
	ctx := context.Background()
	gig := newGig(t, svc, owner, CreateGigInput{Title: "t", Description: "d", Budget: 100})
	bid, err := svc.PlaceBid(ctx, uuid.New(), PlaceBidInput{GigID: gig.ID, Message: "m", BidAmount: 90})
	if err != nil {
		t.Fatalf("place bid: %v", err)
	}
	if _, err := hiring.NewCoordinator(store, nil).Hire(ctx, bid.ID, owner); err != nil {
		t.Fatalf("hire: %v", err)
	}

	_, err = svc.PlaceBid(ctx, uuid.New(), PlaceBidInput{GigID: gig.ID, Message: "late", BidAmount: 60})
	expectKind(t, err, apperr.KindConflict)
}

// Bids racing a hire either land before it (and get rejected by it) or are
// refused; none is left pending on the assigned gig.
func TestPlaceBidRacingHire(t *testing.T) {
	store := memory.New()
	svc := NewService(store)
	coord := hiring.NewCoordinator(store, nil)
	owner := uuid.New()
	ctx := context.Background()
	gig := newGig(t, svc, owner, CreateGigInput{Title: "t", Description: "d", Budget: 100})
	first, err := svc.PlaceBid(ctx, uuid.New(), PlaceBidInput{GigID: gig.ID, Message: "m", BidAmount: 90})
	if err != nil {
		t.Fatalf("place bid: %v", err)
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		if _, err := coord.Hire(ctx, first.ID, owner); err != nil {
			t.Errorf("hire: %v", err)
		}
	}()
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.PlaceBid(ctx, uuid.New(), PlaceBidInput{GigID: gig.ID, Message: "late", BidAmount: 50})
			if err != nil && !apperr.Is(err, apperr.KindConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	bids, err := svc.BidsForGig(ctx, gig.ID, owner)
	if err != nil {
		t.Fatalf("bids for gig: %v", err)
	}
	for _, b := range bids {
		if b.Status == models.BidStatusPending {
			t.Fatalf("bid %s left pending on assigned gig", b.ID)
		}
	}
}

func TestBidsForGigOwnerOnly(t *testing.T) {
	svc := NewService(memory.New())
	owner := uuid.New()
	ctx := context.Background()
	gig := newGig(t, svc, owner, CreateGigInput{Title: "t", Description: "d", Budget: 100})
	for i := 0; i < 3; i++ {
		if _, err := svc.PlaceBid(ctx, uuid.New(), PlaceBidInput{GigID: gig.ID, Message: "m", BidAmount: 10}); err != nil {
			t.Fatalf("place bid: %v", err)
		}
	}

	bids, err := svc.BidsForGig(ctx, gig.ID, owner)
	if err != nil {
		t.Fatalf("bids for gig: %v", err)
	}
	if len(bids) != 3 {
		t.Fatalf("got %d bids, want 3", len(bids))
	}

	_, err = svc.BidsForGig(ctx, gig.ID, uuid.New())
	expectKind(t, err, apperr.KindForbidden)

	_, err = svc.BidsForGig(ctx, uuid.New(), owner)
	expectKind(t, err, apperr.KindNotFound)
}

func TestNotFoundKeepsMessageVerbatim(t *testing.T) {
	msg := "gig 100% gone"
	err := notFound(repository.ErrNotFound, msg)
	if !apperr.Is(err, apperr.KindNotFound) || err.Error() != msg {
		t.Fatalf("notFound = %v", err)
	}
	other := errors.New("boom")
	if notFound(other, msg) != other {
		t.Fatal("unrelated errors must pass through")
	}
}
