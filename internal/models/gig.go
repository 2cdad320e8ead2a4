// internal/models/gig.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GigStatus string

const (
	GigStatusOpen     GigStatus = "open"     // accepting bids
	GigStatusAssigned GigStatus = "assigned" // one bid hired, closed
)

const DefaultCategory = "General"

type Gig struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index;<-:create" json:"owner_id"`

	Title       string                      `gorm:"not null" json:"title"`
	Description string                      `gorm:"type:text;not null" json:"description"`
	Budget      int64                       `gorm:"not null" json:"budget"`
	Category    string                      `gorm:"type:varchar(100);default:General;index" json:"category"`
	Skills      datatypes.JSONSlice[string] `json:"skills"`

	// Written only by the hiring coordinator.
	Status     GigStatus  `gorm:"type:varchar(20);not null;default:open;index" json:"status"`
	AssignedTo *uuid.UUID `gorm:"type:uuid" json:"assigned_to"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (g *Gig) IsOpen() bool {
	return g.Status == GigStatusOpen
}

// Clone returns a deep copy, so callers can hand out records without sharing
// the skills slice or the assignee pointer.
func (g Gig) Clone() Gig {
	out := g
	if g.Skills != nil {
		out.Skills = append(datatypes.JSONSlice[string]{}, g.Skills...)
	}
	if g.AssignedTo != nil {
		id := *g.AssignedTo
		out.AssignedTo = &id
	}
	return out
}
