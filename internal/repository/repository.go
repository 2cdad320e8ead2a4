// Package repository is the storage port for gigs and bids. Status fields are
// only ever changed through Tx, inside Store.WithinTx.
package repository

import (
	"context"
	"errors"

	"github.com/Windi-Fikriyansyah/gigflow/internal/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStale means a conditional update found the row but not in the
	// expected prior state.
	ErrStale     = errors.New("record changed concurrently")
	ErrDuplicate = errors.New("duplicate record")
)

type GigFilter struct {
	Search    string
	Category  string
	MaxBudget int64
	Status    models.GigStatus
	OwnerID   *uuid.UUID
}

// GigDetails holds the owner-editable fields of a gig. Nil means unchanged.
type GigDetails struct {
	Title       *string
	Description *string
	Budget      *int64
	Category    *string
	Skills      []string
}

type Reader interface {
	FindGig(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	FindBid(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	ListGigs(ctx context.Context, filter GigFilter) ([]models.Gig, error)
	ListBidsByGig(ctx context.Context, gigID uuid.UUID) ([]models.Bid, error)
	ListBidsByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error)
	GigCategories(ctx context.Context) ([]string, error)
}

type Tx interface {
	Reader

	// LockGig and LockBid read a row and hold it until the transaction ends.
	// Callers lock the gig before any of its bids.
	LockGig(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	LockBid(ctx context.Context, id uuid.UUID) (*models.Bid, error)

	FindBidByGigAndFreelancer(ctx context.Context, gigID, freelancerID uuid.UUID) (*models.Bid, error)
	CountBidsByGig(ctx context.Context, gigID uuid.UUID) (int64, error)

	CreateGig(ctx context.Context, gig *models.Gig) error
	CreateBid(ctx context.Context, bid *models.Bid) error
	UpdateGigDetails(ctx context.Context, id uuid.UUID, details GigDetails) error
	DeleteGig(ctx context.Context, id uuid.UUID) error

	// AssignGig moves an open gig to assigned. ErrStale if it is not open.
	AssignGig(ctx context.Context, gigID, freelancerID uuid.UUID) error
	// TransitionBid moves a bid from -> to. ErrStale if it is not in from.
	TransitionBid(ctx context.Context, bidID uuid.UUID, from, to models.BidStatus, reason *string) error
	// RejectPendingBids rejects every pending bid of the gig except one.
	RejectPendingBids(ctx context.Context, gigID, exceptBidID uuid.UUID) (int64, error)
}

type Store interface {
	Reader

	// WithinTx runs fn as one atomic unit. Any error from fn, or a context
	// that expires before commit, leaves the store untouched.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
}
