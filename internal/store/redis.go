package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps each room's message log in a list, newest at the head, trimmed
// to historyCap entries. IDs come from a per-room counter key.
type Redis struct {
	client *redis.Client
	cap    int64
}

func NewRedis(addr string, historyCap int) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		cap:    int64(historyCap),
	}
}

var _ Store = (*Redis)(nil)

func roomKey(room string) string {
	return "teleroom:room:" + room + ":messages"
}

func seqKey(room string) string {
	return "teleroom:room:" + room + ":seq"
}

func (r *Redis) Append(ctx context.Context, room string, msg *Message) error {
	id, err := r.client.Incr(ctx, seqKey(room)).Result()
	if err != nil {
		return fmt.Errorf("assigning message id: %w", err)
	}
	msg.ID = id
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, roomKey(room), payload)
	if r.cap > 0 {
		pipe.LTrim(ctx, roomKey(room), 0, r.cap-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

func (r *Redis) Recent(ctx context.Context, room string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	raw, err := r.client.LRange(ctx, roomKey(room), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	// The list holds newest first; return oldest first.
	out := make([]Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var msg Message
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			return nil, fmt.Errorf("decoding message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
