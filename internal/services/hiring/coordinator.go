package hiring

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Windi-Fikriyansyah/gigflow/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigflow/internal/models"
	"github.com/Windi-Fikriyansyah/gigflow/internal/notify"
	"github.com/Windi-Fikriyansyah/gigflow/internal/repository"
	"github.com/google/uuid"
)

const (
	DefaultTimeout       = 5 * time.Second
	DefaultNotifyTimeout = 3 * time.Second
)

// Coordinator is the only writer of gig and bid lifecycle state. Every
// transition is validated and applied inside one store transaction, and the
// gig row is locked before any of its bids.
type Coordinator struct {
	store         repository.Store
	notifier      notify.Publisher
	timeout       time.Duration
	notifyTimeout time.Duration
	inflight      sync.WaitGroup
}

type Option func(*Coordinator)

func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.notifyTimeout = d
		}
	}
}

func NewCoordinator(store repository.Store, notifier notify.Publisher, opts ...Option) *Coordinator {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	c := &Coordinator{
		store:         store,
		notifier:      notifier,
		timeout:       DefaultTimeout,
		notifyTimeout: DefaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type HireResult struct {
	Gig      models.Gig `json:"gig"`
	HiredBid models.Bid `json:"hired_bid"`
	// Rejected counts the sibling bids closed by this hire.
	Rejected int64 `json:"rejected_count"`
}

// Hire accepts bidID on behalf of requesterID: the gig becomes assigned to
// the bidder, the bid is hired and every other pending bid on the gig is
// rejected, all in one transaction.
func (c *Coordinator) Hire(ctx context.Context, bidID, requesterID uuid.UUID) (*HireResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var res HireResult
	err := c.store.WithinTx(ctx, func(tx repository.Tx) error {
		bid, err := tx.FindBid(ctx, bidID)
		if err != nil {
			return notFound(err, "bid not found")
		}
		gig, err := tx.LockGig(ctx, bid.GigID)
		if err != nil {
			return notFound(err, "gig not found")
		}
		if gig.OwnerID != requesterID {
			return apperr.Forbidden("access denied, you can only hire for your own gigs")
		}
		if !gig.IsOpen() {
			return apperr.Conflict("this gig has already been assigned")
		}
		// re-read under the gig lock; a concurrent reject may have won
		bid, err = tx.LockBid(ctx, bidID)
		if err != nil {
			return notFound(err, "bid not found")
		}
		if !models.CanTransition(bid.Status, models.BidStatusHired) {
			return apperr.Conflict("this bid has already been processed")
		}

		if err := tx.AssignGig(ctx, gig.ID, bid.FreelancerID); err != nil {
			return stale(err, "this gig has already been assigned")
		}
		if err := tx.TransitionBid(ctx, bid.ID, models.BidStatusPending, models.BidStatusHired, nil); err != nil {
			return stale(err, "this bid has already been processed")
		}
		rejected, err := tx.RejectPendingBids(ctx, gig.ID, bid.ID)
		if err != nil {
			return err
		}

		assigned, err := tx.FindGig(ctx, gig.ID)
		if err != nil {
			return err
		}
		hired, err := tx.FindBid(ctx, bid.ID)
		if err != nil {
			return err
		}
		res = HireResult{Gig: *assigned, HiredBid: *hired, Rejected: rejected}
		return nil
	})
	if err != nil {
		return nil, c.fail("hire", bidID, err)
	}

	log.Printf("[hiring] bid %s hired for gig %s, %d sibling bids rejected", res.HiredBid.ID, res.Gig.ID, res.Rejected)

	// Bulk-rejected bidders are not notified, only the hired one.
	c.publish(ctx, notify.Event{
		UserID: res.HiredBid.FreelancerID,
		Kind:   notify.KindHired,
		Payload: HiredPayload{
			Message: fmt.Sprintf("Congratulations! You have been hired for %q", res.Gig.Title),
			Gig:     summarize(res.Gig),
			Bid:     res.HiredBid,
		},
	})
	return &res, nil
}

// Reject closes a single pending bid with an optional reason. The gig's own
// status is not checked, so bids can still be rejected on an assigned gig.
func (c *Coordinator) Reject(ctx context.Context, bidID, requesterID uuid.UUID, reason string) (*models.Bid, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var why *string
	if r := strings.TrimSpace(reason); r != "" {
		why = &r
	}

	var (
		out      models.Bid
		gigTitle string
	)
	err := c.store.WithinTx(ctx, func(tx repository.Tx) error {
		bid, err := tx.FindBid(ctx, bidID)
		if err != nil {
			return notFound(err, "bid not found")
		}
		gig, err := tx.LockGig(ctx, bid.GigID)
		if err != nil {
			return notFound(err, "gig not found")
		}
		if gig.OwnerID != requesterID {
			return apperr.Forbidden("access denied, you can only reject bids for your own gigs")
		}
		bid, err = tx.LockBid(ctx, bidID)
		if err != nil {
			return notFound(err, "bid not found")
		}
		if !models.CanTransition(bid.Status, models.BidStatusRejected) {
			return apperr.Conflict("this bid has already been processed")
		}
		if err := tx.TransitionBid(ctx, bid.ID, models.BidStatusPending, models.BidStatusRejected, why); err != nil {
			return stale(err, "this bid has already been processed")
		}

		rejected, err := tx.FindBid(ctx, bid.ID)
		if err != nil {
			return err
		}
		out = *rejected
		gigTitle = gig.Title
		return nil
	})
	if err != nil {
		return nil, c.fail("reject", bidID, err)
	}

	c.publish(ctx, notify.Event{
		UserID: out.FreelancerID,
		Kind:   notify.KindBidRejected,
		Payload: RejectedPayload{
			Message: fmt.Sprintf("Your bid for %q was rejected", gigTitle),
			Reason:  why,
			Bid:     out,
		},
	})
	return &out, nil
}

// fail turns whatever came out of the transaction into a caller-facing
// error. Domain errors pass through; anything from the store becomes a
// transient failure, whose cause is logged but never shown.
func (c *Coordinator) fail(op string, bidID uuid.UUID, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	log.Printf("[hiring] %s bid %s: store failure: %v", op, bidID, err)
	return apperr.Transient(op+" could not be completed, please retry", err)
}

// publish is fire-and-forget: delivery runs in its own goroutine after
// commit, detached from the caller's cancellation, and only logs failures.
func (c *Coordinator) publish(ctx context.Context, ev notify.Event) {
	ctx = context.WithoutCancel(ctx)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[hiring] notifier panic for %s event to %s: %v", ev.Kind, ev.UserID, r)
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, c.notifyTimeout)
		defer cancel()
		if err := c.notifier.Publish(ctx, ev); err != nil {
			log.Printf("[hiring] dropped %s event to %s: %v", ev.Kind, ev.UserID, err)
		}
	}()
}

// Wait blocks until every notification already handed to the notifier has
// been delivered or dropped.
func (c *Coordinator) Wait() {
	c.inflight.Wait()
}

func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.New(apperr.KindNotFound, msg)
	}
	return err
}

func stale(err error, msg string) error {
	if errors.Is(err, repository.ErrStale) {
		return apperr.New(apperr.KindConflict, msg)
	}
	return err
}
