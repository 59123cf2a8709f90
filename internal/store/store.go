// Package store is the message persistence collaborator. The live-delivery
// core never writes messages itself; the HTTP send handler appends here
// first, so the broadcaster only ever fans out already-durable events.
package store

import (
	"context"
	"time"
)

// Message kinds, matching the media handling of the original deployment.
const (
	KindText  = "text"
	KindPhoto = "photo"
	KindVoice = "voice"
	KindFile  = "file"
)

type Message struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	MediaURL  string    `json:"media_url,omitempty"`
	Kind      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// Store keeps the per-room message log. Implementations assign Message.ID
// on Append.
type Store interface {
	Append(ctx context.Context, room string, msg *Message) error
	// Recent returns up to limit messages, oldest first.
	Recent(ctx context.Context, room string, limit int) ([]Message, error)
	Close() error
}
