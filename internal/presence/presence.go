// Package presence derives online membership from the registry and tells the
// room about joins and leaves. Announcements are best-effort: the session
// lifecycle never waits on them or fails because of them.
package presence

import (
	"log/slog"

	"github.com/teleroom/teleroom/internal/broadcast"
	"github.com/teleroom/teleroom/pkg/event"
	"github.com/teleroom/teleroom/pkg/registry"
)

type Tracker struct {
	registry    *registry.Registry
	broadcaster *broadcast.Broadcaster
	logger      *slog.Logger
}

func New(reg *registry.Registry, b *broadcast.Broadcaster, logger *slog.Logger) *Tracker {
	return &Tracker{
		registry:    reg,
		broadcaster: b,
		logger:      logger.With(slog.String("component", "presence")),
	}
}

// Joined announces a genuinely new user to the rest of the room. The joiner
// is excluded from their own announcement.
func (t *Tracker) Joined(room string, userID int64) {
	count := t.registry.Count(room)
	t.broadcaster.Broadcast(room, event.NewPresence(event.PresenceJoined, userID, count), userID)
	t.logger.Info("user joined", slog.String("room", room), slog.Int64("userID", userID), slog.Int("online", count))
}

// Left announces a departure to the remaining members. The departed session
// is already out of the registry, so no exclusion is needed.
func (t *Tracker) Left(room string, userID int64) {
	count := t.registry.Count(room)
	t.broadcaster.Broadcast(room, event.NewPresence(event.PresenceLeft, userID, count))
	t.logger.Info("user left", slog.String("room", room), slog.Int64("userID", userID), slog.Int("online", count))
}

// Online reports how many users are live in the room.
func (t *Tracker) Online(room string) int {
	return t.registry.Count(room)
}

// TotalOnline reports live users across all rooms, for health reporting.
func (t *Tracker) TotalOnline() int {
	return t.registry.CountAll()
}
