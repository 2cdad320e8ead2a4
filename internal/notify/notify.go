// Package notify is the outbound notification port. Delivery (websocket,
// redis, email) lives behind Publisher; callers never wait on it for
// correctness.
package notify

import (
	"context"

	"github.com/google/uuid"
)

type Kind string

const (
	KindHired       Kind = "hired"
	KindBidRejected Kind = "bidRejected"
)

type Event struct {
	UserID  uuid.UUID `json:"user_id"`
	Kind    Kind      `json:"type"`
	Payload any       `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type PublisherFunc func(ctx context.Context, ev Event) error

func (f PublisherFunc) Publish(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
