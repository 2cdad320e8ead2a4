// Package memory is a process-local repository.Store used for development
// (STORE_DRIVER=memory) and tests. Transactions are serialized by one writer
// lock and work on a private copy that replaces the live state on commit.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Windi-Fikriyansyah/gigflow/internal/models"
	"github.com/Windi-Fikriyansyah/gigflow/internal/repository"
	"github.com/google/uuid"
)

type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		st: &state{
			gigs: make(map[uuid.UUID]models.Gig),
			bids: make(map[uuid.UUID]models.Bid),
		},
		now: time.Now,
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.st.clone()
	tx.now = s.now
	if err := fn(tx); err != nil {
		return err
	}
	// a deadline that passed while fn ran aborts the commit
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.now = nil
	s.st = tx
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) FindGig(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.FindGig(ctx, id)
}

func (s *Store) FindBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.FindBid(ctx, id)
}

func (s *Store) ListGigs(ctx context.Context, filter repository.GigFilter) ([]models.Gig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListGigs(ctx, filter)
}

func (s *Store) ListBidsByGig(ctx context.Context, gigID uuid.UUID) ([]models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListBidsByGig(ctx, gigID)
}

func (s *Store) ListBidsByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListBidsByFreelancer(ctx, freelancerID)
}

func (s *Store) GigCategories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GigCategories(ctx)
}

// state is both the committed snapshot and, once cloned, a transaction.
type state struct {
	gigs map[uuid.UUID]models.Gig
	bids map[uuid.UUID]models.Bid
	now  func() time.Time
}

var _ repository.Tx = (*state)(nil)

func (st *state) clone() *state {
	out := &state{
		gigs: make(map[uuid.UUID]models.Gig, len(st.gigs)),
		bids: make(map[uuid.UUID]models.Bid, len(st.bids)),
	}
	for id, g := range st.gigs {
		out.gigs[id] = g.Clone()
	}
	for id, b := range st.bids {
		out.bids[id] = b.Clone()
	}
	return out
}

func (st *state) FindGig(_ context.Context, id uuid.UUID) (*models.Gig, error) {
	g, ok := st.gigs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := g.Clone()
	return &out, nil
}

func (st *state) FindBid(_ context.Context, id uuid.UUID) (*models.Bid, error) {
	b, ok := st.bids[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := b.Clone()
	return &out, nil
}

func (st *state) ListGigs(_ context.Context, filter repository.GigFilter) ([]models.Gig, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]models.Gig, 0)
	for _, g := range st.gigs {
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		if filter.OwnerID != nil && g.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Category != "" && g.Category != filter.Category {
			continue
		}
		if filter.MaxBudget > 0 && g.Budget > filter.MaxBudget {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(g.Title), search) &&
			!strings.Contains(strings.ToLower(g.Description), search) {
			continue
		}
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (st *state) ListBidsByGig(_ context.Context, gigID uuid.UUID) ([]models.Bid, error) {
	return st.bidsWhere(func(b models.Bid) bool { return b.GigID == gigID }), nil
}

func (st *state) ListBidsByFreelancer(_ context.Context, freelancerID uuid.UUID) ([]models.Bid, error) {
	return st.bidsWhere(func(b models.Bid) bool { return b.FreelancerID == freelancerID }), nil
}

func (st *state) bidsWhere(keep func(models.Bid) bool) []models.Bid {
	out := make([]models.Bid, 0)
	for _, b := range st.bids {
		if keep(b) {
			out = append(out, b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (st *state) GigCategories(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	out := make([]string, 0)
	for _, g := range st.gigs {
		if !g.IsOpen() || seen[g.Category] {
			continue
		}
		seen[g.Category] = true
		out = append(out, g.Category)
	}
	sort.Strings(out)
	return out, nil
}

// Every transaction already holds the store's writer lock, so locking a row
// is a plain read here.
func (st *state) LockGig(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	return st.FindGig(ctx, id)
}

func (st *state) LockBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	return st.FindBid(ctx, id)
}

func (st *state) FindBidByGigAndFreelancer(_ context.Context, gigID, freelancerID uuid.UUID) (*models.Bid, error) {
	for _, b := range st.bids {
		if b.GigID == gigID && b.FreelancerID == freelancerID {
			out := b.Clone()
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (st *state) CountBidsByGig(_ context.Context, gigID uuid.UUID) (int64, error) {
	var n int64
	for _, b := range st.bids {
		if b.GigID == gigID {
			n++
		}
	}
	return n, nil
}

func (st *state) CreateGig(_ context.Context, gig *models.Gig) error {
	if gig.ID == uuid.Nil {
		gig.ID = uuid.New()
	}
	if _, ok := st.gigs[gig.ID]; ok {
		return repository.ErrDuplicate
	}
	now := st.clock()
	gig.CreatedAt, gig.UpdatedAt = now, now
	st.gigs[gig.ID] = gig.Clone()
	return nil
}

func (st *state) CreateBid(_ context.Context, bid *models.Bid) error {
	if bid.ID == uuid.Nil {
		bid.ID = uuid.New()
	}
	if _, ok := st.bids[bid.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, b := range st.bids {
		if b.GigID == bid.GigID && b.FreelancerID == bid.FreelancerID {
			return repository.ErrDuplicate
		}
	}
	now := st.clock()
	bid.CreatedAt, bid.UpdatedAt = now, now
	st.bids[bid.ID] = bid.Clone()
	return nil
}

func (st *state) UpdateGigDetails(_ context.Context, id uuid.UUID, d repository.GigDetails) error {
	g, ok := st.gigs[id]
	if !ok {
		return repository.ErrNotFound
	}
	if d.Title != nil {
		g.Title = *d.Title
	}
	if d.Description != nil {
		g.Description = *d.Description
	}
	if d.Budget != nil {
		g.Budget = *d.Budget
	}
	if d.Category != nil {
		g.Category = *d.Category
	}
	if d.Skills != nil {
		g.Skills = append([]string{}, d.Skills...)
	}
	g.UpdatedAt = st.clock()
	st.gigs[id] = g
	return nil
}

func (st *state) DeleteGig(_ context.Context, id uuid.UUID) error {
	if _, ok := st.gigs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(st.gigs, id)
	return nil
}

func (st *state) AssignGig(_ context.Context, gigID, freelancerID uuid.UUID) error {
	g, ok := st.gigs[gigID]
	if !ok {
		return repository.ErrNotFound
	}
	if !g.IsOpen() {
		return repository.ErrStale
	}
	assignee := freelancerID
	g.Status = models.GigStatusAssigned
	g.AssignedTo = &assignee
	g.UpdatedAt = st.clock()
	st.gigs[gigID] = g
	return nil
}

func (st *state) TransitionBid(_ context.Context, bidID uuid.UUID, from, to models.BidStatus, reason *string) error {
	b, ok := st.bids[bidID]
	if !ok {
		return repository.ErrNotFound
	}
	if b.Status != from {
		return repository.ErrStale
	}
	b.Status = to
	if reason != nil {
		r := *reason
		b.RejectionReason = &r
	}
	b.UpdatedAt = st.clock()
	st.bids[bidID] = b
	return nil
}

func (st *state) RejectPendingBids(_ context.Context, gigID, exceptBidID uuid.UUID) (int64, error) {
	var n int64
	now := st.clock()
	for id, b := range st.bids {
		if b.GigID != gigID || id == exceptBidID || b.Status != models.BidStatusPending {
			continue
		}
		b.Status = models.BidStatusRejected
		b.UpdatedAt = now
		st.bids[id] = b
		n++
	}
	return n, nil
}

func (st *state) clock() time.Time {
	if st.now != nil {
		return st.now()
	}
	return time.Now()
}
