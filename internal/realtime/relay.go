package realtime

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Relay subscribes to every user channel and forwards messages to the local
// hub.
type Relay struct {
	rdb   *redis.Client
	hub   *Hub
	ready chan struct{}
	once  sync.Once
}

func NewRelay(rdb *redis.Client, hub *Hub) *Relay {
	return &Relay{rdb: rdb, hub: hub, ready: make(chan struct{})}
}

// Ready is closed once the pattern subscription is confirmed by redis.
func (r *Relay) Ready() <-chan struct{} {
	return r.ready
}

// Run blocks until ctx is done or the subscription breaks.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.rdb.PSubscribe(ctx, ChannelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	r.once.Do(func() { close(r.ready) })
	log.Printf("[realtime] relay subscribed to %s*", ChannelPrefix)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.forward(msg)
		}
	}
}

func (r *Relay) forward(msg *redis.Message) {
	userID, ok := UserFromChannel(msg.Channel)
	if !ok {
		log.Printf("[realtime] relay ignoring channel %q", msg.Channel)
		return
	}
	r.hub.SendBytes(userID, []byte(msg.Payload))
}
