package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Windi-Fikriyansyah/gigflow/internal/notify"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ChannelPrefix namespaces the per-user redis channels.
const ChannelPrefix = "notifications:"

// Envelope is what a websocket client receives.
type Envelope struct {
	Type    notify.Kind `json:"type"`
	Payload any         `json:"payload"`
}

func Channel(userID uuid.UUID) string {
	return ChannelPrefix + userID.String()
}

// UserFromChannel is the inverse of Channel.
func UserFromChannel(channel string) (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(channel, ChannelPrefix)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func Encode(ev notify.Event) ([]byte, error) {
	return json.Marshal(Envelope{Type: ev.Kind, Payload: ev.Payload})
}

// HubPublisher delivers straight to sockets held by this process. A user
// with no open socket is not an error.
type HubPublisher struct {
	Hub *Hub
}

func (p HubPublisher) Publish(_ context.Context, ev notify.Event) error {
	data, err := Encode(ev)
	if err != nil {
		return err
	}
	p.Hub.SendBytes(ev.UserID, data)
	return nil
}

// RedisPublisher fans events out to every API instance through redis
// pub/sub; each instance's Relay hands them to its own hub.
type RedisPublisher struct {
	RDB *redis.Client
}

func (p RedisPublisher) Publish(ctx context.Context, ev notify.Event) error {
	data, err := Encode(ev)
	if err != nil {
		return err
	}
	return p.RDB.Publish(ctx, Channel(ev.UserID), data).Err()
}
