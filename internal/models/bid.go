// internal/models/bid.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusHired    BidStatus = "hired"
	BidStatusRejected BidStatus = "rejected"
)

type Bid struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GigID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bids_gig_freelancer;<-:create" json:"gig_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bids_gig_freelancer;index;<-:create" json:"freelancer_id"`

	Message   string `gorm:"type:text;not null" json:"message"`
	BidAmount int64  `gorm:"not null" json:"bid_amount"`

	Status          BidStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	RejectionReason *string   `gorm:"type:text" json:"rejection_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b Bid) Clone() Bid {
	out := b
	if b.RejectionReason != nil {
		r := *b.RejectionReason
		out.RejectionReason = &r
	}
	return out
}

// CanTransition is the bid state machine: only pending bids move, and only
// to one of the terminal states.
func CanTransition(from, to BidStatus) bool {
	return from == BidStatusPending && (to == BidStatusHired || to == BidStatusRejected)
}
