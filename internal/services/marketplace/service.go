// Package marketplace covers the gig and bid plumbing around the hiring
// core: posting and editing gigs, placing bids, and the read side.
package marketplace

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/Windi-Fikriyansyah/gigflow/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigflow/internal/models"
	"github.com/Windi-Fikriyansyah/gigflow/internal/repository"
	"github.com/google/uuid"
)

// BudgetBrackets are the accepted values of the gig list "budget" filter.
var BudgetBrackets = map[string]int64{
	"500":   500,
	"1000":  1000,
	"5000":  5000,
	"10000": 10000,
}

type Service struct {
	store repository.Store
}

func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

type CreateGigInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=5000"`
	Budget      int64    `json:"budget" validate:"required,gt=0"`
	Category    string   `json:"category" validate:"omitempty,max=100"`
	Skills      []string `json:"skills" validate:"omitempty,max=20,dive,max=50"`
}

type UpdateGigInput struct {
	Title       *string  `json:"title" validate:"omitempty,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Budget      *int64   `json:"budget" validate:"omitempty,gt=0"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	Skills      []string `json:"skills" validate:"omitempty,max=20,dive,max=50"`
}

type PlaceBidInput struct {
	GigID     uuid.UUID `json:"gig_id" validate:"required"`
	Message   string    `json:"message" validate:"required,max=2000"`
	BidAmount int64     `json:"bid_amount" validate:"required,gt=0"`
}

type ListGigsInput struct {
	Search   string
	Category string
	Budget   string
}

func (s *Service) CreateGig(ctx context.Context, ownerID uuid.UUID, in CreateGigInput) (*models.Gig, error) {
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	if title == "" || desc == "" || in.Budget <= 0 {
		return nil, apperr.Invalid("please provide title, description, and budget")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.DefaultCategory
	}

	gig := models.Gig{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: desc,
		Budget:      in.Budget,
		Category:    category,
		Skills:      cleanSkills(in.Skills),
		Status:      models.GigStatusOpen,
	}
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		return tx.CreateGig(ctx, &gig)
	})
	if err != nil {
		return nil, storeFailure("create gig", err)
	}
	return &gig, nil
}

func (s *Service) GetGig(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	gig, err := s.store.FindGig(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("gig not found")
		}
		return nil, storeFailure("get gig", err)
	}
	return gig, nil
}

// ListOpenGigs is the public board: open gigs only, newest first.
func (s *Service) ListOpenGigs(ctx context.Context, in ListGigsInput) ([]models.Gig, error) {
	filter := repository.GigFilter{
		Search: strings.TrimSpace(in.Search),
		Status: models.GigStatusOpen,
	}
	if c := strings.TrimSpace(in.Category); c != "" && c != "all" {
		filter.Category = c
	}
	if b := strings.TrimSpace(in.Budget); b != "" && b != "all" {
		// unknown brackets are ignored rather than rejected
		filter.MaxBudget = BudgetBrackets[b]
	}
	gigs, err := s.store.ListGigs(ctx, filter)
	if err != nil {
		return nil, storeFailure("list gigs", err)
	}
	return gigs, nil
}

func (s *Service) ListMyGigs(ctx context.Context, ownerID uuid.UUID) ([]models.Gig, error) {
	gigs, err := s.store.ListGigs(ctx, repository.GigFilter{OwnerID: &ownerID})
	if err != nil {
		return nil, storeFailure("list my gigs", err)
	}
	return gigs, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.store.GigCategories(ctx)
	if err != nil {
		return nil, storeFailure("categories", err)
	}
	return cats, nil
}

// UpdateGig edits the owner-controlled fields. Status and assignee are not
// reachable from here, and an assigned gig is frozen.
func (s *Service) UpdateGig(ctx context.Context, id, requesterID uuid.UUID, in UpdateGigInput) (*models.Gig, error) {
	details := repository.GigDetails{Budget: in.Budget}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, apperr.Invalid("title cannot be empty")
		}
		details.Title = &t
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			return nil, apperr.Invalid("description cannot be empty")
		}
		details.Description = &d
	}
	if in.Budget != nil && *in.Budget <= 0 {
		return nil, apperr.Invalid("budget must be positive")
	}
	if in.Category != nil {
		c := strings.TrimSpace(*in.Category)
		if c == "" {
			c = models.DefaultCategory
		}
		details.Category = &c
	}
	if in.Skills != nil {
		details.Skills = cleanSkills(in.Skills)
	}

	var out models.Gig
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		gig, err := tx.LockGig(ctx, id)
		if err != nil {
			return notFound(err, "gig not found")
		}
		if gig.OwnerID != requesterID {
			return apperr.Forbidden("access denied, you can only update your own gigs")
		}
		if !gig.IsOpen() {
			return apperr.Conflict("an assigned gig can no longer be edited")
		}
		if err := tx.UpdateGigDetails(ctx, id, details); err != nil {
			return err
		}
		updated, err := tx.FindGig(ctx, id)
		if err != nil {
			return err
		}
		out = *updated
		return nil
	})
	if err != nil {
		return nil, storeFailure("update gig", err)
	}
	return &out, nil
}

// DeleteGig removes a gig nobody has bid on yet. Once a bid references it the
// gig is kept, so bids never point at a missing gig.
func (s *Service) DeleteGig(ctx context.Context, id, requesterID uuid.UUID) error {
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		gig, err := tx.LockGig(ctx, id)
		if err != nil {
			return notFound(err, "gig not found")
		}
		if gig.OwnerID != requesterID {
			return apperr.Forbidden("access denied, you can only delete your own gigs")
		}
		n, err := tx.CountBidsByGig(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("gig already has bids and cannot be deleted")
		}
		return tx.DeleteGig(ctx, id)
	})
	if err != nil {
		return storeFailure("delete gig", err)
	}
	return nil
}

// PlaceBid is the bid creation guard. It holds the gig lock, so a bid can
// never land on a gig that a concurrent hire just closed.
func (s *Service) PlaceBid(ctx context.Context, freelancerID uuid.UUID, in PlaceBidInput) (*models.Bid, error) {
	msg := strings.TrimSpace(in.Message)
	if in.GigID == uuid.Nil || msg == "" || in.BidAmount <= 0 {
		return nil, apperr.Invalid("please provide gig_id, message, and bid_amount")
	}

	bid := models.Bid{
		ID:           uuid.New(),
		GigID:        in.GigID,
		FreelancerID: freelancerID,
		Message:      msg,
		BidAmount:    in.BidAmount,
		Status:       models.BidStatusPending,
	}
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		gig, err := tx.LockGig(ctx, in.GigID)
		if err != nil {
			return notFound(err, "gig not found")
		}
		if !gig.IsOpen() {
			return apperr.Conflict("this gig is no longer accepting bids")
		}
		if _, err := tx.FindBidByGigAndFreelancer(ctx, in.GigID, freelancerID); err == nil {
			return apperr.Conflict("you have already bid on this gig")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := tx.CreateBid(ctx, &bid); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("you have already bid on this gig")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storeFailure("place bid", err)
	}
	return &bid, nil
}

// BidsForGig lists every bid of a gig; only the gig owner may look.
func (s *Service) BidsForGig(ctx context.Context, gigID, requesterID uuid.UUID) ([]models.Bid, error) {
	gig, err := s.GetGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.OwnerID != requesterID {
		return nil, apperr.Forbidden("access denied, you can only view bids for your own gigs")
	}
	bids, err := s.store.ListBidsByGig(ctx, gigID)
	if err != nil {
		return nil, storeFailure("list bids", err)
	}
	return bids, nil
}

func (s *Service) MyBids(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error) {
	bids, err := s.store.ListBidsByFreelancer(ctx, freelancerID)
	if err != nil {
		return nil, storeFailure("my bids", err)
	}
	return bids, nil
}

func cleanSkills(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.New(apperr.KindNotFound, msg)
	}
	return err
}

func storeFailure(op string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	log.Printf("[marketplace] %s: %v", op, err)
	return apperr.Transient(op+" failed, please retry", err)
}
