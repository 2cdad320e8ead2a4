package hiring

import (
	"github.com/Windi-Fikriyansyah/gigflow/internal/models"
	"github.com/google/uuid"
)

type GigSummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Budget      int64     `json:"budget"`
	Description string    `json:"description"`
}

type HiredPayload struct {
	Message string     `json:"message"`
	Gig     GigSummary `json:"gig"`
	Bid     models.Bid `json:"bid"`
}

type RejectedPayload struct {
	Message string     `json:"message"`
	Reason  *string    `json:"reason"`
	Bid     models.Bid `json:"bid"`
}

func summarize(g models.Gig) GigSummary {
	return GigSummary{ID: g.ID, Title: g.Title, Budget: g.Budget, Description: g.Description}
}
