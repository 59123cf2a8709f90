// Package broadcast fans events out to the live sessions of a room. Delivery
// to each recipient is independent: one dead or slow connection never blocks
// the others, it just gets evicted.
package broadcast

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/teleroom/teleroom/pkg/event"
	"github.com/teleroom/teleroom/pkg/registry"
)

// ErrSlowConsumer is the close cause for sessions whose outbound queue was
// full or whose transport refused the send.
var ErrSlowConsumer = errors.New("outbound send failed or queue full")

// EvictFunc tears down a session that failed a send: close it, detach it
// from the registry, and announce the departure.
type EvictFunc func(sess *registry.Session, cause error)

type Broadcaster struct {
	registry *registry.Registry
	logger   *slog.Logger
	evict    EvictFunc
}

func New(reg *registry.Registry, logger *slog.Logger) *Broadcaster {
	b := &Broadcaster{
		registry: reg,
		logger:   logger.With(slog.String("component", "broadcaster")),
	}
	b.evict = b.defaultEvict
	return b
}

// OnEvict replaces the teardown for failed recipients. The gateway installs
// its own so departures are also announced to the room.
func (b *Broadcaster) OnEvict(fn EvictFunc) {
	if fn != nil {
		b.evict = fn
	}
}

func (b *Broadcaster) defaultEvict(sess *registry.Session, cause error) {
	sess.Close(cause)
	b.registry.Remove(sess.Room(), sess.UserID(), sess)
}

// Broadcast delivers ev to every session currently in the room, skipping the
// excluded users. Failed recipients are evicted asynchronously; the failure
// never reaches the caller. Returns the number of successful deliveries.
func (b *Broadcaster) Broadcast(room string, ev event.Event, exclude ...int64) int {
	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.Error("failed to marshal event", slog.String("type", string(ev.Kind())), slog.Any("error", err))
		return 0
	}

	delivered := 0
	for _, sess := range b.registry.Snapshot(room) {
		if isExcluded(sess.UserID(), exclude) {
			continue
		}
		if !sess.TrySend(payload) {
			b.logger.Warn("dropping unresponsive session",
				slog.String("room", room),
				slog.Int64("userID", sess.UserID()),
				slog.String("event", string(ev.Kind())),
			)
			go b.evict(sess, ErrSlowConsumer)
			continue
		}
		delivered++
	}
	return delivered
}

// SendToUser delivers ev to one user's current session. Reports whether a
// live session existed and accepted the event; a failed send evicts the
// session just like Broadcast does.
func (b *Broadcaster) SendToUser(room string, userID int64, ev event.Event) bool {
	sess, ok := b.registry.Lookup(room, userID)
	if !ok {
		return false
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.Error("failed to marshal event", slog.String("type", string(ev.Kind())), slog.Any("error", err))
		return false
	}
	if !sess.TrySend(payload) {
		go b.evict(sess, ErrSlowConsumer)
		return false
	}
	return true
}

func isExcluded(userID int64, exclude []int64) bool {
	for _, id := range exclude {
		if id == userID {
			return true
		}
	}
	return false
}
